package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"

	"github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/finder/services"
	"github.com/drapcode/exchange-engine/internal/types"
)

type FinderHandler struct {
	service services.Service
	decoder *schema.Decoder
}

func NewFinderHandler(service services.Service) *FinderHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &FinderHandler{service: service, decoder: decoder}
}

// ProcessItems runs a stored finder.
// Endpoint: GET /projects/:projectId/collections/:collectionName/finders/:filterUuid/items
func (h *FinderHandler) ProcessItems(c *fiber.Ctx) error {
	queryData := c.Queries()

	var flags models.Flags
	if err := h.decoder.Decode(&flags, multiValues(queryData)); err != nil {
		return errors.HandleValidationError(c, "invalid query flags: "+err.Error())
	}

	req := models.Request{
		ProjectID:      c.Params("projectId"),
		CollectionName: c.Params("collectionName"),
		FilterUUID:     c.Params("filterUuid"),
		Token:          bearerToken(c),
		Timezone:       headerOr(c, types.HeaderTimezone, types.DefaultTimezone),
		DateFormat:     headerOr(c, types.HeaderDateFormat, types.DefaultDateFormat),
		Headers:        firstValues(c.GetReqHeaders()),
		QueryData:      queryData,
		Flags:          flags,
		ClientIPs:      clientIPs(c),
	}

	resp, err := h.service.ProcessItemsByFilter(c.UserContext(), req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// ListItems runs a generic "field:OPERATOR" list query.
// Endpoint: GET /projects/:projectId/collections/:collectionName/items?status:IN=a,b&max=10
func (h *FinderHandler) ListItems(c *fiber.Ctx) error {
	resp, err := h.service.GenericList(c.UserContext(), models.ListRequest{
		ProjectID:      c.Params("projectId"),
		CollectionName: c.Params("collectionName"),
		Token:          bearerToken(c),
		Params:         c.Queries(),
		ClientIPs:      clientIPs(c),
	})
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func bearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(types.HeaderAuthorization))
	if len(auth) >= len(types.BearerPrefix) && strings.EqualFold(auth[:len(types.BearerPrefix)], types.BearerPrefix) {
		return strings.TrimSpace(auth[len(types.BearerPrefix):])
	}
	return auth
}

// clientIPs lists every address in X-Forwarded-For and then the peer
// address, without duplicates.
func clientIPs(c *fiber.Ctx) []string {
	seen := map[string]bool{}
	var out []string
	for _, ip := range append(c.IPs(), c.IP()) {
		ip = strings.TrimSpace(ip)
		if ip == "" || seen[ip] {
			continue
		}
		seen[ip] = true
		out = append(out, ip)
	}
	return out
}

func headerOr(c *fiber.Ctx, name, fallback string) string {
	if v := c.Get(name); v != "" {
		return v
	}
	return fallback
}

func multiValues(in map[string]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = []string{v}
	}
	return out
}

func firstValues(in map[string][]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
