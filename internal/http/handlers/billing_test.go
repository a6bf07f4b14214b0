package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echomail/internal/infra/billing"
)

func TestVerifyCheckoutPromotesDevice(t *testing.T) {
	fx := newFixture(t)
	fx.billing.verifyInfo = &billing.SubscriptionInfo{
		SubscriptionID: "sub_123",
		Status:         "trialing",
		IsPro:          true,
	}
	fx.billing.statusInfo = fx.billing.verifyInfo

	rec := httptest.NewRecorder()
	req := fx.request(http.MethodPost, "/v1/billing/verify-session", strings.NewReader(`{"session_id":"cs_test"}`))
	fx.app.VerifyCheckout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if fx.prefs.subs["dev-1"] != "sub_123" {
		t.Fatalf("subscription ref not persisted: %v", fx.prefs.subs)
	}
	if fx.prefs.tiers["dev-1"] != "PRO" {
		t.Fatalf("tier not promoted: %v", fx.prefs.tiers)
	}
}

func TestVerifyCheckoutIncompleteSessionDoesNotPromote(t *testing.T) {
	fx := newFixture(t)
	fx.billing.verifyInfo = &billing.SubscriptionInfo{Status: "incomplete", IsPro: false}

	rec := httptest.NewRecorder()
	req := fx.request(http.MethodPost, "/v1/billing/verify-session", strings.NewReader(`{"session_id":"cs_test"}`))
	fx.app.VerifyCheckout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(fx.prefs.subs) != 0 || len(fx.prefs.tiers) != 0 {
		t.Fatalf("incomplete session must not promote: subs=%v tiers=%v", fx.prefs.subs, fx.prefs.tiers)
	}
}

func TestSubscriptionStatusWithoutSubscription(t *testing.T) {
	fx := newFixture(t)
	rec := httptest.NewRecorder()
	fx.app.SubscriptionStatus(rec, fx.request(http.MethodPost, "/v1/billing/subscription-status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeJSON[subscriptionDTO](t, rec)
	if out.Status != "none" {
		t.Fatalf("expected status none, got %+v", out)
	}
}

func TestSubscriptionStatusDemotesDeadSubscription(t *testing.T) {
	fx := newFixture(t)
	fx.prefs.subs["dev-1"] = "sub_dead"
	fx.prefs.tiers["dev-1"] = "PRO"
	fx.billing.statusInfo = &billing.SubscriptionInfo{
		SubscriptionID: "sub_dead",
		Status:         "canceled",
		IsPro:          false,
	}

	rec := httptest.NewRecorder()
	fx.app.SubscriptionStatus(rec, fx.request(http.MethodPost, "/v1/billing/subscription-status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if _, still := fx.prefs.subs["dev-1"]; still {
		t.Fatal("dead subscription ref should be cleared")
	}
	if fx.prefs.tiers["dev-1"] != "BASIC" {
		t.Fatalf("expected demotion to BASIC, got %v", fx.prefs.tiers)
	}
}

func TestSubscriptionStatusKeepsActivePro(t *testing.T) {
	fx := newFixture(t)
	fx.prefs.subs["dev-1"] = "sub_live"
	fx.prefs.tiers["dev-1"] = "PRO"
	fx.billing.statusInfo = &billing.SubscriptionInfo{
		SubscriptionID: "sub_live",
		Status:         "active",
		IsPro:          true,
	}

	rec := httptest.NewRecorder()
	fx.app.SubscriptionStatus(rec, fx.request(http.MethodPost, "/v1/billing/subscription-status", nil))

	out := decodeJSON[subscriptionDTO](t, rec)
	if !out.IsPro || out.Status != "active" {
		t.Fatalf("unexpected status %+v", out)
	}
	if fx.prefs.subs["dev-1"] != "sub_live" || fx.prefs.tiers["dev-1"] != "PRO" {
		t.Fatal("active subscription must not be touched")
	}
}

func TestCreateCheckoutReturnsSession(t *testing.T) {
	fx := newFixture(t)
	fx.billing.session = &billing.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}

	rec := httptest.NewRecorder()
	fx.app.CreateCheckout(rec, fx.request(http.MethodPost, "/v1/billing/checkout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeJSON[billing.CheckoutSession](t, rec)
	if out.ID != "cs_test" || out.URL == "" {
		t.Fatalf("unexpected session %+v", out)
	}
}
