package config

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	LogZapMode               string `mapstructure:"LOG_ZAP_MODE"`
	PrintConfigurationToLogs string `mapstructure:"PRINT_CONFIGURATION_TO_LOGS"`
	DiscordToken             string `mapstructure:"DISCORD_TOKEN"`
	DiscordChannelID         string `mapstructure:"DISCORD_CHANNEL_ID"`
	RoninApiUrl              string `mapstructure:"RONIN_API_URL"`
	RoninApiKey              string `mapstructure:"RONIN_API_KEY"`
	RoninRpcUrl              string `mapstructure:"RONIN_RPC_URL"`
	OpenseaApiUrl            string `mapstructure:"OPENSEA_API_URL"`
	OpenseaApiKey            string `mapstructure:"OPENSEA_API_KEY"`
	PollIntervalSeconds      int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	FetchSize                int    `mapstructure:"FETCH_SIZE"`
	CollectionsJson          string `mapstructure:"COLLECTIONS"`
	RPCPort                  int    `mapstructure:"RPC_PORT"`
}

// CollectionConfig is one entry of the COLLECTIONS JSON array.
type CollectionConfig struct {
	Name     string `json:"name"`
	Contract string `json:"contract"`
	Slug     string `json:"slug"`
	Market   string `json:"market"`
}

func (c Config) Collections() ([]CollectionConfig, error) {
	if c.CollectionsJson == "" {
		return nil, nil
	}
	var collections []CollectionConfig
	if err := json.Unmarshal([]byte(c.CollectionsJson), &collections); err != nil {
		return nil, fmt.Errorf("failed to parse COLLECTIONS - %w", err)
	}
	return collections, nil
}

var lock = &sync.Mutex{}
var config *Config

var Get = get

func get() Config {
	if config == nil {
		lock.Lock()
		defer lock.Unlock()
		if config == nil {
			c := loadConfig()
			config = &c
		}
	}
	return *config
}

func loadConfig() Config {
	viperAddConfigFile()
	viperAddEnv()
	cfg := initializeCfg()
	debugConfig(cfg)
	return cfg
}

func viperAddConfigFile() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
}

func viperAddEnv() {
	viper.AutomaticEnv()
	// This makes sure that all envs are binded even if they are not represented in config file (https://github.com/spf13/viper/issues/584)
	valueOfConfig := reflect.ValueOf(&Config{}).Elem()
	fieldsOfConfig := reflect.TypeOf(&Config{}).Elem()
	for i := 0; i < valueOfConfig.NumField(); i++ {
		field, _ := fieldsOfConfig.FieldByName(valueOfConfig.Type().Field(i).Name)
		mapStructureVal := field.Tag.Get("mapstructure")
		err := viper.BindEnv(mapStructureVal)
		if err != nil {
			panic(fmt.Sprintf("Error binding env val '%v': %v", mapStructureVal, err))
		}
	}
}

func initializeCfg() Config {
	var cfg Config
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		} else {
			panic(fmt.Sprintf("fatal error reading config file: %v", err))
		}
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		panic(fmt.Sprintf("error unmarshaling config: %v", err))
	}
	return cfg
}

func debugConfig(cfg Config) {
	if cfg.PrintConfigurationToLogs == "true" {
		b, err := json.Marshal(cfg)
		var result string
		if err != nil {
			result = "[FAILED TO CONVERT CONF TO STRING]"
		} else {
			result = string(b)
		}
		log.Printf("[APP CONFIGURATION]: %v\n", result)
	}
}
