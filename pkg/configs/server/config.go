package server

// Configuration for the API server.
//
// to get `ServerConfig` instance, use `Unmarshal` or `LoadServerConfig`.
type ServerConfig struct {
	port             int32
	database         string
	logLevel         string
	schemaRepository string
	apiRoot          string
}

// Port where the server listens.
func (c *ServerConfig) Port() int32 {
	return c.port
}

// Connection string for database.
func (c *ServerConfig) Database() string {
	return c.database
}

// default = "info"
func (c *ServerConfig) LogLevel() string {
	return c.logLevel
}

// Path to the directory of schema versions.
//
// When it is empty, the server does not check schema versions.
func (c *ServerConfig) SchemaRepository() string {
	return c.schemaRepository
}

// Path prefix of the REST API. default = "/api/v1"
func (c *ServerConfig) ApiRoot() string {
	return c.apiRoot
}
