package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

const (
	FileName     = "labbot.yaml"
	templateDir  = "template"
	defaultDir   = "config"
	defaultLogs  = "logs"
	defaultShots = "screenshots"
)

var (
	cfgMux sync.RWMutex
	Lab    *LabCfg
	dir    = defaultDir
)

type LabCfg struct {
	Debug struct {
		Log         bool `yaml:"log"`
		Screenshots bool `yaml:"screenshots"`
	} `yaml:"debug"`
	Name             string      `yaml:"name"`
	LogSaveDirectory string      `yaml:"logSaveDirectory"`
	Device           DeviceCfg   `yaml:"device"`
	Research         ResearchCfg `yaml:"research"`
	Discord          DiscordCfg  `yaml:"discord"`
	Telegram         TelegramCfg `yaml:"telegram"`
	History          HistoryCfg  `yaml:"history"`
}

type DiscordCfg struct {
	Enabled                 bool     `yaml:"enabled"`
	EnableResearchMessages  bool     `yaml:"enableResearchMessages"`
	EnableCycleMessages     bool     `yaml:"enableCycleMessages"`
	DisableRewardScreenshot bool     `yaml:"disableRewardScreenshot"`
	BotAdmins               []string `yaml:"botAdmins"`
	ChannelID               string   `yaml:"channelId"`
	Token                   string   `yaml:"token"`
	UseWebhook              bool     `yaml:"useWebhook"`
	WebhookURL              string   `yaml:"webhookUrl"`
}

type TelegramCfg struct {
	Enabled                bool   `yaml:"enabled"`
	EnableResearchMessages bool   `yaml:"enableResearchMessages"`
	ChatID                 int64  `yaml:"chatId"`
	Token                  string `yaml:"token"`
}

type HistoryCfg struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type DeviceCfg struct {
	AdbPath               string `yaml:"adbPath"`
	Serial                string `yaml:"serial"`
	CommandTimeoutSeconds int    `yaml:"commandTimeoutSeconds"`

	// A capture slower than SlowCaptureMs for SlowCaptureSeconds pauses the bot.
	SlowCaptureMs      int `yaml:"slowCaptureMs"`
	SlowCaptureSeconds int `yaml:"slowCaptureSeconds"`
}

type ResearchCfg struct {
	Enabled                 bool   `yaml:"enabled"`
	SaveGetItems            bool   `yaml:"saveGetItems"`
	ScreenshotFolder        string `yaml:"screenshotFolder"`
	Priority                string `yaml:"priority"`
	ClickIntervalSeconds    int    `yaml:"clickIntervalSeconds"`
	MaxSelectAttempts       int    `yaml:"maxSelectAttempts"`
	PropagateStrategyResult bool   `yaml:"propagateStrategyResult"`
	CheckIntervalMinutes    int    `yaml:"checkIntervalMinutes"`
	StableTimeoutSeconds    int    `yaml:"stableTimeoutSeconds"`
	ActiveFrom              string `yaml:"activeFrom"`
	ActiveTo                string `yaml:"activeTo"`

	// Projects maps carousel card fingerprints to what is known about them.
	Projects []ProjectCfg `yaml:"projects"`
}

type ProjectCfg struct {
	Fingerprint     string `yaml:"fingerprint"`
	Name            string `yaml:"name"`
	DurationMinutes int    `yaml:"durationMinutes"`
	Cost            int    `yaml:"cost"`
}

// Load reads labbot.yaml from configDir (or "config" when empty) into Lab.
func Load(configDir string) error {
	if configDir == "" {
		configDir = defaultDir
	}

	cfg, err := read(filepath.Join(configDir, FileName))
	if err != nil {
		return err
	}

	cfgMux.Lock()
	defer cfgMux.Unlock()
	dir = configDir
	Lab = cfg

	return nil
}

// Get returns a copy of the loaded config.
func Get() LabCfg {
	cfgMux.RLock()
	defer cfgMux.RUnlock()
	if Lab == nil {
		return LabCfg{}
	}
	return *Lab
}

func Dir() string {
	cfgMux.RLock()
	defer cfgMux.RUnlock()
	return dir
}

func read(path string) (*LabCfg, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", FileName, err)
	}
	defer r.Close()

	cfg := &LabCfg{}
	d := yaml.NewDecoder(r)
	if err = d.Decode(cfg); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate fills defaults and rejects settings the bot cannot run with.
func (c *LabCfg) Validate() error {
	if c.Name == "" {
		c.Name = "labbot"
	}
	if c.LogSaveDirectory == "" {
		c.LogSaveDirectory = defaultLogs
	}
	if c.Device.AdbPath == "" {
		c.Device.AdbPath = "adb"
	}
	if c.Device.CommandTimeoutSeconds <= 0 {
		c.Device.CommandTimeoutSeconds = 10
	}
	if c.Device.SlowCaptureMs <= 0 {
		c.Device.SlowCaptureMs = 2000
	}
	if c.Device.SlowCaptureSeconds <= 0 {
		c.Device.SlowCaptureSeconds = 60
	}

	r := &c.Research
	if r.ScreenshotFolder == "" {
		r.ScreenshotFolder = defaultShots
	}
	if r.ClickIntervalSeconds <= 0 {
		r.ClickIntervalSeconds = 10
	}
	if r.MaxSelectAttempts <= 0 {
		r.MaxSelectAttempts = 2
	}
	if r.CheckIntervalMinutes <= 0 {
		r.CheckIntervalMinutes = 30
	}
	if r.StableTimeoutSeconds <= 0 {
		r.StableTimeoutSeconds = 10
	}
	r.Priority = strings.TrimSpace(r.Priority)
	if (r.ActiveFrom == "") != (r.ActiveTo == "") {
		return errors.New("research activeFrom and activeTo must be set together")
	}
	for _, t := range []string{r.ActiveFrom, r.ActiveTo} {
		if t == "" {
			continue
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("invalid research active time %q: %w", t, err)
		}
	}

	if c.Discord.Enabled {
		c.Discord.WebhookURL = strings.TrimSpace(c.Discord.WebhookURL)
		if c.Discord.UseWebhook && c.Discord.WebhookURL == "" {
			return errors.New("discord webhook mode requires webhookUrl")
		}
		if !c.Discord.UseWebhook && c.Discord.Token == "" {
			return errors.New("discord bot mode requires token")
		}
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return errors.New("telegram requires token")
	}
	if c.History.Enabled && c.History.Path == "" {
		c.History.Path = filepath.Join(c.LogSaveDirectory, "history.db")
	}

	return nil
}

// Save validates cfg, writes it and reloads it.
func Save(cfg LabCfg) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	text, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error parsing labbot config: %w", err)
	}

	configDir := Dir()
	if err = os.WriteFile(filepath.Join(configDir, FileName), text, 0644); err != nil {
		return fmt.Errorf("error writing labbot config: %w", err)
	}

	return Load(configDir)
}

// CreateFromTemplate copies the template folder of configDir into a new
// folder named name.
func CreateFromTemplate(configDir, name string) (string, error) {
	if configDir == "" {
		configDir = defaultDir
	}
	target := filepath.Join(configDir, name)
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		return "", fmt.Errorf("configuration with the same name already exists: %s", target)
	}

	if err := cp.Copy(filepath.Join(configDir, templateDir), target); err != nil {
		return "", fmt.Errorf("error copying template: %w", err)
	}

	return target, nil
}
