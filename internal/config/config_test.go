package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HUMAND_BASE", "https://api.humand.co/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HumandBase != "https://api.humand.co" {
		t.Errorf("HumandBase = %q", cfg.HumandBase)
	}
	if cfg.SendInterval != 60*time.Second || cfg.DeliveryTimeout != 10*time.Second {
		t.Errorf("intervals = %v / %v", cfg.SendInterval, cfg.DeliveryTimeout)
	}
	if cfg.EntranceDevice != "Facial Entrada" || cfg.ExitDevice != "Facial Salida" {
		t.Errorf("devices = %q / %q", cfg.EntranceDevice, cfg.ExitDevice)
	}
	if cfg.DedupRetention != 24*time.Hour {
		t.Errorf("DedupRetention = %v", cfg.DedupRetention)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
	if cfg.HTTPAddr != ":5000" || cfg.LogMaxMB != 5 || cfg.LogBackups != 5 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DRY_RUN", "true")
	t.Setenv("SEND_INTERVAL", "15")
	t.Setenv("DELIVERY_TIMEOUT", "3s")
	t.Setenv("DEDUP_RETENTION", "0")
	t.Setenv("ENTRANCE_DEVICE", "Door In")
	t.Setenv("EXIT_DEVICE", "Door Out")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DryRun || cfg.SendInterval != 15*time.Second || cfg.DeliveryTimeout != 3*time.Second {
		t.Errorf("unexpected %+v", cfg)
	}
	if cfg.DedupRetention != 0 {
		t.Errorf("DedupRetention = %v, want 0", cfg.DedupRetention)
	}
	if cfg.EntranceDevice != "Door In" || cfg.ExitDevice != "Door Out" {
		t.Errorf("devices = %q / %q", cfg.EntranceDevice, cfg.ExitDevice)
	}
	if cfg.TelegramChatID != -100123 {
		t.Errorf("TelegramChatID = %d", cfg.TelegramChatID)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing base", map[string]string{}, "HUMAND_BASE"},
		{"bad interval", map[string]string{"DRY_RUN": "1", "SEND_INTERVAL": "soon"}, "SEND_INTERVAL"},
		{"zero interval", map[string]string{"DRY_RUN": "1", "SEND_INTERVAL": "0"}, "SEND_INTERVAL"},
		{"bad dry run", map[string]string{"DRY_RUN": "maybe"}, "DRY_RUN"},
		{"same devices", map[string]string{"DRY_RUN": "1", "ENTRANCE_DEVICE": "X", "EXIT_DEVICE": "X"}, "must differ"},
		{"chat id required", map[string]string{"DRY_RUN": "1", "TELEGRAM_BOT_TOKEN": "tok"}, "TELEGRAM_CHAT_ID"},
		{"bad chat id", map[string]string{"DRY_RUN": "1", "TELEGRAM_CHAT_ID": "abc"}, "TELEGRAM_CHAT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("HUMAND_BASE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSubscription(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HIK_HOST", "https://192.168.4.252/")
	t.Setenv("HIK_APP_KEY", "key")
	t.Setenv("HIK_APP_SECRET", "")
	t.Setenv("WEBHOOK_URL", "")

	_, err := LoadSubscription()
	if err == nil || !strings.Contains(err.Error(), "HIK_APP_SECRET, WEBHOOK_URL") {
		t.Fatalf("err = %v", err)
	}

	t.Setenv("HIK_APP_SECRET", "secret")
	t.Setenv("WEBHOOK_URL", "http://relay:5000/webhook/hikvision/events")
	cfg, err := LoadSubscription()
	if err != nil {
		t.Fatalf("LoadSubscription: %v", err)
	}
	if cfg.Host != "https://192.168.4.252" || !cfg.InsecureTLS {
		t.Errorf("unexpected %+v", cfg)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}
