package config

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"bitbucket.org/mmdatafocus/inventory_backend/appctx"
)

func TestParseLogLevel(t *testing.T) {
	if got := parseLogLevel("debug"); got != logrus.DebugLevel {
		t.Fatalf("parseLogLevel(debug) = %v", got)
	}
	if got := parseLogLevel(""); got != logrus.ErrorLevel {
		t.Fatalf("parseLogLevel(empty) = %v, want error", got)
	}
	if got := parseLogLevel("loud"); got != logrus.ErrorLevel {
		t.Fatalf("parseLogLevel(loud) = %v, want error", got)
	}
}

func TestRetryDelay_Capped(t *testing.T) {
	if got := RetryDelay(1); got != 2*time.Second {
		t.Fatalf("RetryDelay(1) = %v", got)
	}
	if got := RetryDelay(10); got != 30*time.Second {
		t.Fatalf("RetryDelay(10) = %v, want 30s", got)
	}
}

func TestDSN_CloudSQLSocket(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("DB_PORT", "3306")

	t.Setenv("DB_HOST", "10.0.0.5")
	if got, want := DSN(), "app:pw@tcp(10.0.0.5:3306)/inventory?parseTime=true&loc=UTC"; got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}

	t.Setenv("DB_HOST", "/cloudsql/proj:region:db")
	if got, want := DSN(), "app:pw@unix(/cloudsql/proj:region:db)/inventory?parseTime=true&loc=UTC"; got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("STRICT_PURCHASE_EDITING", "yes")
	if !StrictPurchaseEditing() {
		t.Fatalf("expected strict editing on")
	}
	t.Setenv("STRICT_PURCHASE_EDITING", "")
	if StrictPurchaseEditing() {
		t.Fatalf("expected strict editing off")
	}

	t.Setenv("PURCHASE_SESSION_TTL_MINUTES", "15")
	if got := PurchaseSessionTTL(); got != 15*time.Minute {
		t.Fatalf("PurchaseSessionTTL() = %v", got)
	}
	t.Setenv("PURCHASE_SESSION_TTL_MINUTES", "-4")
	if got := PurchaseSessionTTL(); got != 120*time.Minute {
		t.Fatalf("PurchaseSessionTTL() = %v, want default", got)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	origins := AllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins() = %v", origins)
	}
}

func TestExprHasBusinessID(t *testing.T) {
	cases := []struct {
		name string
		expr clause.Expression
		want bool
	}{
		{"eq column", clause.Eq{Column: clause.Column{Name: "business_id"}, Value: "b"}, true},
		{"eq string", clause.Eq{Column: "BUSINESS_ID", Value: "b"}, true},
		{"raw sql", clause.Expr{SQL: "business_id = ? AND is_active = ?"}, true},
		{"nested and", clause.AndConditions{Exprs: []clause.Expression{
			clause.Eq{Column: "id", Value: 1},
			clause.IN{Column: clause.Column{Name: "business_id"}},
		}}, true},
		{"other column", clause.Eq{Column: clause.Column{Name: "id"}, Value: 1}, false},
		{"raw sql without tenant", clause.Expr{SQL: "id IN ?"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exprHasBusinessID(tc.expr); got != tc.want {
				t.Fatalf("exprHasBusinessID() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := appctx.Set(context.Background(), appctx.ContextKeyBusinessId, "biz-1")
	if got := tenantFromContext(ctx); got != "biz-1" {
		t.Fatalf("tenantFromContext() = %q", got)
	}
	skipped := appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)
	if got := tenantFromContext(skipped); got != "" {
		t.Fatalf("tenantFromContext(skip) = %q, want empty", got)
	}
}

func TestPubSubEnabled(t *testing.T) {
	t.Setenv("PUBSUB_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GCP_PROJECT", "")
	t.Setenv("PUBSUB_TOPIC", "purchases")
	if PubSubEnabled() {
		t.Fatalf("expected pubsub disabled without a project")
	}
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo")
	if !PubSubEnabled() {
		t.Fatalf("expected pubsub enabled")
	}
}
