package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"ekta-storefront/models"
	"ekta-storefront/pricing"
)

// OrderPlacedMessage is returned to the shopper once an order is placed
const OrderPlacedMessage = "Order placed successfully! Thank you for shopping with ektA."

// PaymentMethods lists the accepted payment methods; the first one is the default
var PaymentMethods = []string{"Cash on Delivery", "bKash", "Nagad", "Card Payment"}

// CheckoutService quotes carts and places orders
type CheckoutService struct {
	engine        *pricing.Engine
	notifications *NotificationService
	now           func() time.Time
}

// NewCheckoutService creates a new CheckoutService; notifications may be nil
func NewCheckoutService(engine *pricing.Engine, notifications *NotificationService) *CheckoutService {
	return &CheckoutService{
		engine:        engine,
		notifications: notifications,
		now:           time.Now,
	}
}

// Quote returns the order summary of cart
func (s *CheckoutService) Quote(cart *CartStore) models.CheckoutQuote {
	return s.engine.Quote(cart.Items())
}

func validateOrder(req *models.PlaceOrderRequest) error {
	var missing []string
	if strings.TrimSpace(req.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(req.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return validationErrorf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = PaymentMethods[0]
	}
	if !slices.Contains(PaymentMethods, req.PaymentMethod) {
		return validationErrorf("Invalid payment method. Must be one of: %s", strings.Join(PaymentMethods, ", "))
	}
	return nil
}

func (s *CheckoutService) newOrderID() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", s.now().Year(), short)
}

// PlaceOrder quotes and clears cart. Signed-in shoppers also get an order notification;
// a failed notification is logged and does not fail the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, cart *CartStore, req models.PlaceOrderRequest) (*models.OrderConfirmation, error) {
	lines := cart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateOrder(&req); err != nil {
		return nil, err
	}

	quote := s.engine.Quote(lines)
	orderID := s.newOrderID()
	log.Printf("🧾 Placing order %s: %d item(s), total %s, payment %s", orderID, quote.ItemCount, quote.Display, req.PaymentMethod)

	cart.ClearCart()

	if userID != "" && s.notifications != nil {
		_, err := s.notifications.Notify(ctx, userID, models.NotificationTypeOrder,
			"Order confirmed",
			fmt.Sprintf("Your order %s has been placed. Total: %s", orderID, quote.Display),
			map[string]any{"order_id": orderID, "total": quote.Total},
		)
		if err != nil {
			log.Printf("⚠️  Order %s placed but notification failed: %v", orderID, err)
		}
	}

	log.Printf("✅ Order %s placed", orderID)
	return &models.OrderConfirmation{
		OrderID: orderID,
		Quote:   quote,
		Message: OrderPlacedMessage,
	}, nil
}
