package loops

import (
	"fmt"
	"os"
	"time"

	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/loop/recurring"
	"gopkg.in/yaml.v3"
)

// Configuration for the loops.
type LoopsConfig struct {
	database         string
	schemaRepository string
	logLevel         string
	policies         map[domain.LoopType]recurring.Policy
}

// Connection string for database.
func (c *LoopsConfig) Database() string {
	return c.database
}

func (c *LoopsConfig) SchemaRepository() string {
	return c.schemaRepository
}

// default = "info"
func (c *LoopsConfig) LogLevel() string {
	return c.logLevel
}

// Policy returns the policy configured for the loop type.
//
// When nothing is configured, it returns Forever with 5 seconds cooldown.
func (c *LoopsConfig) Policy(lt domain.LoopType) recurring.Policy {
	if p, ok := c.policies[lt]; ok {
		return p
	}
	return recurring.Forever(DefaultCooldown)
}

const DefaultCooldown = 5 * time.Second

type LoopsConfigMarshall struct {
	Database         string                  `yaml:"database"`
	SchemaRepository string                  `yaml:"schemaRepository,omitempty"`
	LogLevel         string                  `yaml:"loglevel,omitempty"`
	Loops            map[string]LoopMarshall `yaml:"loops,omitempty"`
}

type LoopMarshall struct {
	// forever[:COOLDOWN] or backlog
	Policy string `yaml:"policy"`
}

// verify configuration value and create "readonly" version of this.
//
// IT WILL PANIC if any misconfiguration is found.
func (lm *LoopsConfigMarshall) TrySeal() *LoopsConfig {
	path := "(root)"
	if lm.Database == "" {
		panic(path + ".database is required")
	}
	loglevel := lm.LogLevel
	if loglevel == "" {
		loglevel = "info"
	}

	policies := map[domain.LoopType]recurring.Policy{}
	for name, l := range lm.Loops {
		lt, err := domain.AsLoopType(name)
		if err != nil {
			panic(fmt.Errorf("%s.loops: %w", path, err))
		}
		p, err := recurring.ParsePolicy(l.Policy)
		if err != nil {
			panic(fmt.Errorf("%s.loops.%s.policy: %w", path, name, err))
		}
		policies[lt] = p
	}

	return &LoopsConfig{
		database:         lm.Database,
		schemaRepository: lm.SchemaRepository,
		logLevel:         loglevel,
		policies:         policies,
	}
}

func LoadLoopsConfig(filepath string) (*LoopsConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (out *LoopsConfig, err error) {
	var _out *LoopsConfigMarshall
	if err := yaml.Unmarshal(conf, &_out); err != nil {
		return nil, err
	}
	if _out == nil {
		return nil, fmt.Errorf("config is empty")
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()
	return _out.TrySeal(), nil
}
