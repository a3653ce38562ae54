package server

import (
	"fmt"
	"path"
	"slices"
)

var logLevels = []string{"debug", "info", "warn", "error", "off"}

// Configuration of the API server.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `ServerConfig`.
type ServerConfigMarshall struct {
	Port             int32  `yaml:"port"`
	Database         string `yaml:"database"`
	LogLevel         string `yaml:"loglevel,omitempty"`
	SchemaRepository string `yaml:"schemaRepository,omitempty"`
	ApiRoot          string `yaml:"apiRoot,omitempty"`
}

// verify configuration value and create "readonly" version of this.
//
// IT WILL PANIC if any misconfiguration is found.
func (sm *ServerConfigMarshall) TrySeal() *ServerConfig {
	return sm.trySeal("(root)")
}

func (sm *ServerConfigMarshall) trySeal(p string) *ServerConfig {
	loglevel := sm.LogLevel
	if loglevel == "" {
		loglevel = "info"
	}
	if !slices.Contains(logLevels, loglevel) {
		panic(fmt.Errorf("%s.loglevel should be one of %v: %s", p, logLevels, loglevel))
	}

	apiRoot := sm.ApiRoot
	if apiRoot == "" {
		apiRoot = "/api/v1"
	}
	if !path.IsAbs(apiRoot) || path.Clean(apiRoot) != apiRoot {
		panic(fmt.Errorf("%s.apiRoot should be a clean absolute path: %s", p, apiRoot))
	}

	return &ServerConfig{
		port:             required(sm.Port, p+".port"),
		database:         required(sm.Database, p+".database"),
		logLevel:         loglevel,
		schemaRepository: sm.SchemaRepository,
		apiRoot:          apiRoot,
	}
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
