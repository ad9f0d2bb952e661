package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	finderrors "github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/internal/types"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

type fixture struct {
	svc         Service
	collections *MockCollectionRepository
	users       *MockUserRepository
	verifier    *MockTokenVerifier
	executor    *MockExecutor
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		collections: new(MockCollectionRepository),
		users:       new(MockUserRepository),
		verifier:    new(MockTokenVerifier),
		executor:    new(MockExecutor),
	}
	f.svc = NewService(Dependencies{
		Collections: f.collections,
		Users:       f.users,
		Auth:        NewAuthenticator(f.verifier, f.users),
		Executor:    f.executor,
	}, cfg)
	t.Cleanup(func() {
		f.collections.AssertExpectations(t)
		f.executor.AssertExpectations(t)
	})
	return f
}

func (f *fixture) withCollection(c collectionmodels.Collection) {
	f.collections.On("GetCollection", mock.Anything, "p1", c.CollectionName).Return(types.Some(c), nil)
}

func ordersCollection() collectionmodels.Collection {
	return collectionmodels.Collection{
		ProjectID:      "p1",
		CollectionName: "orders",
		Fields: []collectionmodels.Field{
			{FieldName: "status", Type: "text"},
			{FieldName: "amount", Type: "number"},
			{FieldName: "customer", Type: "reference"},
			{FieldName: "ownerId", Type: "text"},
		},
		Finders: []collectionmodels.Finder{
			{
				UUID: "open",
				Mode: collectionmodels.ModeFind,
				Conditions: []collectionmodels.Condition{
					{FieldName: "status", Operator: "EQUALS", ValueSource: collectionmodels.SourceStatic, Value: "open"},
				},
			},
			{UUID: "total", Mode: collectionmodels.ModeSum, AggregateField: "amount"},
		},
	}
}

func findPipeline(match bson.D, extra ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	return append(p, extra...)
}

func limitStage(n int64) bson.D {
	return bson.D{{Key: "$limit", Value: n}}
}

func requireServiceError(t *testing.T, err error, code int, message string) {
	t.Helper()
	require.Error(t, err)
	var se *finderrors.ServiceError
	require.True(t, errors.As(err, &se), "expected ServiceError, got %T: %v", err, err)
	assert.Equal(t, code, se.Code)
	if message != "" {
		assert.Equal(t, message, se.Message)
	}
}

func TestProcessItemsByFilter_Find(t *testing.T) {
	f := newFixture(t, Config{})
	f.withCollection(ordersCollection())

	rows := []map[string]interface{}{{"uuid": "o1", "status": "open"}}
	f.executor.On("Execute", mock.Anything, "p1", "orders",
		findPipeline(bson.D{{Key: "status", Value: "open"}}, limitStage(100))).Return(rows, nil)

	resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, rows, resp.Result)
	assert.Empty(t, resp.Count)
}

func TestProcessItemsByFilter_NotFound(t *testing.T) {
	t.Run("unknown collection", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.collections.On("GetCollection", mock.Anything, "p1", "orders").
			Return(types.None[collectionmodels.Collection](), nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		})
		requireServiceError(t, err, http.StatusNotFound, "No collection orders found")
	})

	t.Run("unknown finder", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "nope",
		})
		requireServiceError(t, err, http.StatusNotFound, "No collection orders found")
	})
}

func TestProcessItemsByFilter_Authentication(t *testing.T) {
	private := ordersCollection()
	private.IsPrivate = true

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(private)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		})
		requireServiceError(t, err, http.StatusUnauthorized, "Authentication Failed. Please login.")
	})

	t.Run("token without subject", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(private)
		f.verifier.On("VerifyToken", "tok").Return(jwt.MapClaims{"role": "admin"}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		requireServiceError(t, err, http.StatusForbidden, "Authorization Failed. Please send valid token.")
	})

	t.Run("rejected token", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(private)
		f.verifier.On("VerifyToken", "tok").Return(nil, errors.New("expired"))

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		requireServiceError(t, err, http.StatusForbidden, "")
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(private)
		f.verifier.On("VerifyToken", "tok").Return(jwt.MapClaims{"sub": "ghost"}, nil)
		f.users.On("FindByLogin", mock.Anything, "p1", "ghost").Return(types.None[usersrepo.Document](), nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		requireServiceError(t, err, http.StatusUnauthorized, "Authentication Failed. Please login.")
	})
}

func TestProcessItemsByFilter_ExternalParams(t *testing.T) {
	f := newFixture(t, Config{})
	c := ordersCollection()
	c.ExternalParams = []string{"customer_id"}
	f.withCollection(c)

	_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		QueryData: map[string]string{"other": "x"},
	})
	requireServiceError(t, err, http.StatusUnprocessableEntity, "External params should be in [customer_id]")
	f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessItemsByFilter_Aggregates(t *testing.T) {
	t.Run("sum of nothing is zero", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())

		expected := mongo.Pipeline{
			{{Key: "$match", Value: bson.D{}}},
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			}}},
		}
		f.executor.On("Execute", mock.Anything, "p1", "orders", expected).Return([]map[string]interface{}{}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "total",
		})
		require.NoError(t, err)
		assert.Equal(t, "0", resp.Result)
	})

	t.Run("sum renders the total", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())
		f.executor.On("Execute", mock.Anything, "p1", "orders", mock.Anything).
			Return([]map[string]interface{}{{"_id": nil, "total": 12.5}}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "total",
		})
		require.NoError(t, err)
		assert.Equal(t, "12.5", resp.Result)
	})

	t.Run("count flag overrides the stored mode", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())

		expected := mongo.Pipeline{
			{{Key: "$match", Value: bson.D{}}},
			{{Key: "$count", Value: "count"}},
		}
		f.executor.On("Execute", mock.Anything, "p1", "orders", expected).
			Return([]map[string]interface{}{{"count": int32(3)}}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "total",
			QueryData: map[string]string{"count": "1"},
			Flags:     models.Flags{Count: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "3", resp.Result)
		assert.Equal(t, "1", resp.Count)
	})
}

func TestProcessItemsByFilter_IPAllowlist(t *testing.T) {
	restricted := func() collectionmodels.Collection {
		c := ordersCollection()
		c.IPAddresses = []string{"10.0.0.1", " 192.168.1.9 "}
		return c
	}

	t.Run("listed forwarded address is admitted", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(restricted())
		f.executor.On("Execute", mock.Anything, "p1", "orders",
			findPipeline(bson.D{{Key: "status", Value: "open"}}, limitStage(100))).Return([]map[string]interface{}{}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
			ClientIPs: []string{"203.0.113.5", "192.168.1.9"},
		})
		require.NoError(t, err)
	})

	t.Run("unlisted caller is refused before authentication", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := restricted()
		c.IsPrivate = true
		f.withCollection(c)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
			ClientIPs: []string{"203.0.113.5"},
		})
		requireServiceError(t, err, http.StatusForbidden, "Access denied for this IP address")
		f.verifier.AssertNotCalled(t, "VerifyToken", mock.Anything)
		f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generic list applies the allowlist", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(restricted())

		_, err := f.svc.GenericList(context.Background(), models.ListRequest{
			ProjectID: "p1", CollectionName: "orders",
		})
		requireServiceError(t, err, http.StatusForbidden, "")
	})
}

func TestProcessItemsByFilter_ExecutionError(t *testing.T) {
	f := newFixture(t, Config{})
	f.withCollection(ordersCollection())
	f.executor.On("Execute", mock.Anything, "p1", "orders", mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
	})
	requireServiceError(t, err, http.StatusBadRequest, "connection reset")
}

func TestProcessItemsByFilter_ResolutionFailureSkipsDatabase(t *testing.T) {
	f := newFixture(t, Config{})
	c := ordersCollection()
	c.Finders[0].Conditions = append(c.Finders[0].Conditions, collectionmodels.Condition{
		FieldName: "amount", Operator: "GT", ValueSource: collectionmodels.SourceQueryParam, Key: "min",
	})
	f.withCollection(c)

	_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		QueryData: map[string]string{"min": "lots"},
	})
	requireServiceError(t, err, http.StatusBadRequest, "")
	f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessItemsByFilter_MissingParamIsNotApplied(t *testing.T) {
	f := newFixture(t, Config{})
	c := ordersCollection()
	c.Finders[0].Conditions = append(c.Finders[0].Conditions, collectionmodels.Condition{
		FieldName: "amount", Operator: "GT", ValueSource: collectionmodels.SourceQueryParam, Key: "min",
	})
	f.withCollection(c)
	f.executor.On("Execute", mock.Anything, "p1", "orders",
		findPipeline(bson.D{{Key: "status", Value: "open"}}, limitStage(100))).Return([]map[string]interface{}{}, nil)

	_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
	})
	require.NoError(t, err)
}

func TestProcessItemsByFilter_Search(t *testing.T) {
	f := newFixture(t, Config{})
	f.withCollection(ordersCollection())

	match := bson.D{
		{Key: "status", Value: "open"},
		{Key: "amount", Value: int64(5)},
	}
	f.executor.On("Execute", mock.Anything, "p1", "orders",
		findPipeline(match, bson.D{{Key: "$skip", Value: int64(20)}}, limitStage(10))).Return([]map[string]interface{}{}, nil)

	_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
		ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		QueryData: map[string]string{"amount": "5", "unknown": "x", "max": "10"},
		Flags:     models.Flags{Search: true, Offset: 20, Max: 10},
	})
	require.NoError(t, err)
}

func nestedCollections() (collectionmodels.Collection, collectionmodels.Collection) {
	orders := ordersCollection()
	orders.Finders = append(orders.Finders, collectionmodels.Finder{
		UUID: "by-vip",
		Mode: collectionmodels.ModeFind,
		Conditions: []collectionmodels.Condition{{
			FieldName:    "customer",
			Operator:     "IN_LIST",
			ValueSource:  collectionmodels.SourceNestedFilter,
			NestedFilter: &collectionmodels.NestedFilter{CollectionName: "customers", FilterUUID: "vip"},
		}},
	})
	customers := collectionmodels.Collection{
		ProjectID:      "p1",
		CollectionName: "customers",
		Fields:         []collectionmodels.Field{{FieldName: "tier", Type: "text"}},
		Finders: []collectionmodels.Finder{{
			UUID: "vip",
			Mode: collectionmodels.ModeFind,
			Conditions: []collectionmodels.Condition{
				{FieldName: "tier", Operator: "EQUALS", ValueSource: collectionmodels.SourceStatic, Value: "gold"},
			},
		}},
	}
	return orders, customers
}

func nestedPipeline() mongo.Pipeline {
	return findPipeline(bson.D{{Key: "tier", Value: "gold"}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "uuid", Value: 1}}}})
}

func TestProcessItemsByFilter_Nested(t *testing.T) {
	t.Run("ids feed the parent condition", func(t *testing.T) {
		f := newFixture(t, Config{})
		orders, customers := nestedCollections()
		f.withCollection(orders)
		f.withCollection(customers)

		f.executor.On("Execute", mock.Anything, "p1", "customers", nestedPipeline()).
			Return([]map[string]interface{}{{"uuid": "c1"}, {"uuid": "c2"}}, nil)
		match := bson.D{{Key: "customer", Value: bson.D{{Key: "$in", Value: []interface{}{"c1", "c2"}}}}}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{{"uuid": "o1"}}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "by-vip",
		})
		require.NoError(t, err)
		assert.Len(t, resp.Result, 1)
	})

	t.Run("no ids yields an empty IN list", func(t *testing.T) {
		f := newFixture(t, Config{})
		orders, customers := nestedCollections()
		f.withCollection(orders)
		f.withCollection(customers)

		f.executor.On("Execute", mock.Anything, "p1", "customers", nestedPipeline()).
			Return([]map[string]interface{}{}, nil)
		match := bson.D{{Key: "customer", Value: bson.D{{Key: "$in", Value: []interface{}{}}}}}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "by-vip",
		})
		require.NoError(t, err)
		assert.Equal(t, []map[string]interface{}{}, resp.Result)
	})

	t.Run("depth is bounded", func(t *testing.T) {
		f := newFixture(t, Config{MaxNestingDepth: 2})
		loop := collectionmodels.Collection{
			ProjectID:      "p1",
			CollectionName: "tree",
			Finders: []collectionmodels.Finder{{
				UUID: "parent",
				Conditions: []collectionmodels.Condition{{
					FieldName:    "parentId",
					Operator:     "IN_LIST",
					ValueSource:  collectionmodels.SourceNestedFilter,
					NestedFilter: &collectionmodels.NestedFilter{CollectionName: "tree", FilterUUID: "parent"},
				}},
			}},
		}
		f.withCollection(loop)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "tree", FilterUUID: "parent",
		})
		requireServiceError(t, err, http.StatusBadRequest, "Nested filter depth exceeds limit of 2")
		f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("slow nested finder times out", func(t *testing.T) {
		f := newFixture(t, Config{NestedTimeout: 20 * time.Millisecond})
		orders, customers := nestedCollections()
		f.withCollection(orders)
		f.withCollection(customers)

		f.executor.On("Execute", mock.Anything, "p1", "customers", mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.DeadlineExceeded)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "by-vip",
		})
		requireServiceError(t, err, http.StatusBadRequest, "nested filter vip on customers timed out")
	})
}

func TestProcessItemsByFilter_RLS(t *testing.T) {
	secured := func() collectionmodels.Collection {
		c := ordersCollection()
		c.IsPrivate = true
		c.RowLevelSecurityFilter = []collectionmodels.RowLevelSecurityFilter{{
			UUID: "mine",
			Conditions: []collectionmodels.Condition{
				{FieldName: "ownerId", Operator: "EQUALS", ValueSource: collectionmodels.SourceCurrentUser, Key: "uuid"},
			},
		}}
		c.Finders[0].EnableRls = true
		c.Finders[0].RlsFilter = "mine"
		return c
	}
	login := func(f *fixture) {
		f.verifier.On("VerifyToken", "tok").Return(jwt.MapClaims{"sub": "alice"}, nil)
		f.users.On("FindByLogin", mock.Anything, "p1", "alice").
			Return(types.Some(usersrepo.Document{"uuid": "u1", "tenantId": []interface{}{"t1"}}), nil)
	}

	t.Run("rls narrows the finder", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(secured())
		login(f)

		match := bson.D{{Key: "ownerId", Value: "u1"}, {Key: "status", Value: "open"}}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		require.NoError(t, err)
	})

	t.Run("rls and base on one field are both applied", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := secured()
		c.Finders[0].Conditions = []collectionmodels.Condition{
			{FieldName: "ownerId", Operator: "IN_LIST", ValueSource: collectionmodels.SourceQueryParam, Key: "owners"},
		}
		f.withCollection(c)
		login(f)

		match := bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "ownerId", Value: "u1"}},
			bson.D{{Key: "ownerId", Value: bson.D{{Key: "$in", Value: []interface{}{"u1", "u2"}}}}},
		}}}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
			QueryData: map[string]string{"owners": "u1,u2"},
		})
		require.NoError(t, err)
	})

	t.Run("rls operand missing from the user matches nothing", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := secured()
		c.RowLevelSecurityFilter[0].Conditions[0].Key = "orgId"
		f.withCollection(c)
		login(f)

		match := bson.D{
			{Key: "ownerId", Value: bson.D{{Key: "$in", Value: []interface{}{}}}},
			{Key: "status", Value: "open"},
		}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{}, nil)

		resp, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Result)
	})

	t.Run("anonymous caller on a public collection is not widened by rls", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := secured()
		c.IsPrivate = false
		f.withCollection(c)

		match := bson.D{
			{Key: "ownerId", Value: bson.D{{Key: "$in", Value: []interface{}{}}}},
			{Key: "status", Value: "open"},
		}
		f.executor.On("Execute", mock.Anything, "p1", "orders", findPipeline(match, limitStage(100))).
			Return([]map[string]interface{}{}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open",
		})
		require.NoError(t, err)
		f.verifier.AssertNotCalled(t, "VerifyToken", mock.Anything)
	})

	t.Run("unknown rls filter does not narrow", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := secured()
		c.Finders[0].RlsFilter = "missing"
		f.withCollection(c)
		login(f)

		f.executor.On("Execute", mock.Anything, "p1", "orders",
			findPipeline(bson.D{{Key: "status", Value: "open"}}, limitStage(100))).Return([]map[string]interface{}{}, nil)

		_, err := f.svc.ProcessItemsByFilter(context.Background(), models.Request{
			ProjectID: "p1", CollectionName: "orders", FilterUUID: "open", Token: "tok",
		})
		require.NoError(t, err)
	})
}

func TestGenericList(t *testing.T) {
	t.Run("compiles and runs the flat query", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())

		expected := mongo.Pipeline{
			{{Key: "$match", Value: bson.D{{Key: "amount", Value: bson.D{{Key: "$gt", Value: int64(30)}}}}}},
			{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
			{{Key: "$limit", Value: int64(10)}},
		}
		rows := []map[string]interface{}{{"uuid": "o1"}}
		f.executor.On("Execute", mock.Anything, "p1", "orders", expected).Return(rows, nil)

		resp, err := f.svc.GenericList(context.Background(), models.ListRequest{
			ProjectID: "p1", CollectionName: "orders",
			Params: map[string]string{"amount:GT": "30", "max": "10"},
		})
		require.NoError(t, err)
		assert.Equal(t, rows, resp.Result)
	})

	t.Run("unknown operator is a bad request", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.withCollection(ordersCollection())

		_, err := f.svc.GenericList(context.Background(), models.ListRequest{
			ProjectID: "p1", CollectionName: "orders",
			Params: map[string]string{"amount:BETWEEN": "1"},
		})
		requireServiceError(t, err, http.StatusBadRequest, "")
	})

	t.Run("private collection needs a token", func(t *testing.T) {
		f := newFixture(t, Config{})
		c := ordersCollection()
		c.IsPrivate = true
		f.withCollection(c)

		_, err := f.svc.GenericList(context.Background(), models.ListRequest{ProjectID: "p1", CollectionName: "orders"})
		requireServiceError(t, err, http.StatusUnauthorized, "Authentication Failed. Please login.")
	})
}
