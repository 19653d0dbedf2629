package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/service/printing"
)

func decFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("unexpected metrics addr %q", cfg.MetricsAddr)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("unexpected currency %q", cfg.Currency)
	}
	if !cfg.SpoolerEnabled {
		t.Fatal("spooler must be enabled by default")
	}
	if cfg.Device != string(printing.DeviceDesktop) {
		t.Fatalf("unexpected device %q", cfg.Device)
	}
	if cfg.PostgresDSN != "" || len(cfg.KafkaBrokers) != 0 {
		t.Fatal("external integrations must be off by default")
	}
}

func TestNewDependencies_MemoryMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelayAPIKey = "sk-test"
	cfg.RestaurantID = "r1"

	deps, err := NewDependencies(context.Background(), cfg, log.New().WithField("test", "app"))
	if err != nil {
		t.Fatalf("new dependencies: %v", err)
	}
	defer deps.Close(log.New().WithField("test", "app"))

	if deps.Store != nil {
		t.Fatal("postgres store must be nil without DSN")
	}
	if deps.Producer != nil {
		t.Fatal("kafka producer must be nil without brokers")
	}
	if deps.Orders == nil || deps.Intents == nil || deps.Catalog == nil {
		t.Fatal("memory stores must be initialized")
	}

	key, err := deps.Secrets.RetrieveAPIKey(context.Background(), "r1", "print_relay")
	if err != nil {
		t.Fatalf("retrieve key: %v", err)
	}
	if key != "sk-test" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `{
		"items": [{
			"id": "pizza",
			"restaurant_id": "r1",
			"name": "Pizza",
			"base_price": "12.50",
			"tax_rate": "7",
			"option_groups": [{
				"id": "size",
				"name": "Size",
				"required": true,
				"choices": [
					{"id": "small", "name": "Small", "price_delta": "0"},
					{"id": "large", "name": "Large", "price_delta": "3.00"}
				]
			}],
			"topping_groups": [{
				"id": "extras",
				"name": "Extras",
				"allow_multiple_same": true,
				"max_selections": 3,
				"visible_when": [{"source_group_id": "size", "choice_id": "large"}],
				"toppings": [{"id": "cheese", "name": "Cheese", "price": "1.00", "tax_rate": "20"}]
			}]
		}]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	items, err := loadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.ID != "pizza" || item.RestaurantID != "r1" {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.TaxRate == nil || !item.TaxRate.Equal(decFromString(t, "7")) {
		t.Fatalf("unexpected tax rate %v", item.TaxRate)
	}
	if len(item.OptionGroups) != 1 || len(item.OptionGroups[0].Choices) != 2 {
		t.Fatalf("unexpected option groups %+v", item.OptionGroups)
	}
	group := item.ToppingGroups[0]
	if !group.AllowMultipleSame || group.MaxSelections != 3 {
		t.Fatalf("unexpected topping group %+v", group)
	}
	if len(group.VisibleWhen) != 1 || group.VisibleWhen[0].SourceGroupID != "size" {
		t.Fatalf("unexpected visibility conditions %+v", group.VisibleWhen)
	}
	if group.Toppings[0].TaxRate == nil {
		t.Fatal("topping tax rate must be parsed")
	}
}

func TestLoadCatalog_EmptyPath(t *testing.T) {
	items, err := loadCatalog("")
	if err != nil {
		t.Fatalf("empty path must not fail: %v", err)
	}
	if items != nil {
		t.Fatalf("expected no items, got %v", items)
	}
}

func TestLoadCatalog_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := loadCatalog(path); err == nil {
		t.Fatal("expected parse error")
	}

	if _, err := loadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
}
