// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import "time"

// MongoDBConfig describes the deployment holding item data. Every project
// owns the database DatabasePrefix + projectID on it.
type MongoDBConfig struct {
	Host                   string
	Port                   int
	Username               string
	Password               string
	AuthDatabase           string
	ReplicaSet             string
	TLS                    bool
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	SocketTimeout          time.Duration
	MaxConnIdleTime        time.Duration
	ServerSelectionTimeout time.Duration
	DatabasePrefix         string
}

// PostgreSQLConfig describes the builder database that stores collection
// schemas. Schema, when set, becomes the connection's search_path.
type PostgreSQLConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	Schema          string
	SSLMode         string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
