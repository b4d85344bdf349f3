package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "EVENTPULSE_"

type StorageDriver string

const (
	PostgresStorage StorageDriver = "postgres"
	MemoryStorage   StorageDriver = "memory"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Storage struct {
	Driver StorageDriver `koanf:"driver"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func defaults() Application {
	return Application{
		Server: Server{
			Addr: ":8181",
		},
		Storage: Storage{
			Driver: PostgresStorage,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "eventpulse",
			Pass:   "",
			Name:   "eventpulse",
			Schema: "eventpulse",
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}
}

// Load reads configuration from struct defaults, then the optional YAML file at path,
// then EVENTPULSE_* environment variables. Later sources win.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	switch app.Storage.Driver {
	case PostgresStorage, MemoryStorage:
	default:
		log.Warnf("unknown storage driver %q, falling back to %s", app.Storage.Driver, PostgresStorage)
		app.Storage.Driver = PostgresStorage
	}

	return app, nil
}
