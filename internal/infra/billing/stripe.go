package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// SubscriptionInfo is the engine-facing view of a Stripe subscription.
// IsPro mirrors the product rule: trialing and active subscriptions keep
// access, and a canceled subscription keeps access until the paid-through
// end when cancel_at_period_end is set.
type SubscriptionInfo struct {
	SubscriptionID   string `json:"subscription_id"`
	Status           string `json:"status"`
	IsPro            bool   `json:"is_pro"`
	TrialEnd         int64  `json:"trial_end,omitempty"`
	CurrentPeriodEnd int64  `json:"current_period_end,omitempty"`
}

// CheckoutSession is the result of creating a Stripe checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client wraps the Stripe API for checkout and subscription lookups.
type Client struct {
	api *client.API
}

// NewClient builds a Stripe client. An empty key yields a nil client;
// callers treat that as "billing disabled".
func NewClient(secretKey string) *Client {
	if secretKey == "" {
		return nil
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

// CreateCheckoutSession opens a subscription checkout with the configured
// trial window. The device id travels as the client reference so the
// verification step can bind the subscription back to the device.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL, deviceID string, trialDays int) (*CheckoutSession, error) {
	if c == nil {
		return nil, errors.New("stripe is not configured")
	}
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(deviceID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
	}
	if trialDays > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(int64(trialDays)),
		}
	}
	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyCheckoutSession fetches a completed checkout session and returns
// the subscription attached to it.
func (c *Client) VerifyCheckoutSession(ctx context.Context, sessionID string) (*SubscriptionInfo, error) {
	if c == nil {
		return nil, errors.New("stripe is not configured")
	}
	session, err := c.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context: ctx,
			Expand:  []*string{stripe.String("subscription")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch checkout session: %w", err)
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return nil, errors.New("checkout session has no subscription")
	}
	return subscriptionInfo(session.Subscription), nil
}

// SubscriptionStatus fetches the authoritative status for a subscription.
// A missing subscription is not an error: it reports not_found with pro
// access revoked, matching how the product treats stale references.
func (c *Client) SubscriptionStatus(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error) {
	if c == nil {
		return nil, errors.New("stripe is not configured")
	}
	sub, err := c.api.Subscriptions.Get(subscriptionID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return &SubscriptionInfo{SubscriptionID: subscriptionID, Status: "not_found"}, nil
		}
		return nil, fmt.Errorf("fetch subscription: %w", err)
	}
	return subscriptionInfo(sub), nil
}

func subscriptionInfo(sub *stripe.Subscription) *SubscriptionInfo {
	status := string(sub.Status)
	isPro := status == "trialing" || status == "active" ||
		(status == "canceled" && sub.CancelAtPeriodEnd)
	periodEnd := sub.CurrentPeriodEnd
	if periodEnd == 0 {
		periodEnd = sub.TrialEnd
	}
	return &SubscriptionInfo{
		SubscriptionID:   sub.ID,
		Status:           status,
		IsPro:            isPro,
		TrialEnd:         sub.TrialEnd,
		CurrentPeriodEnd: periodEnd,
	}
}
