// Command send-order sends an example order-details message, follows it with
// an order-status update, and queries the payment status — a demo driver for
// the checkout packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/whatsapp-checkout/internal/checkout"
	"github.com/xenking/whatsapp-checkout/internal/credentials"
	"github.com/xenking/whatsapp-checkout/internal/domain/order"
	"github.com/xenking/whatsapp-checkout/internal/graph"
)

// cliConfig is loaded from WACHECKOUT_-prefixed environment variables.
type cliConfig struct {
	GraphBaseURL         string
	AccessToken          string
	BusinessAccountID    string
	PaymentConfiguration string
}

func main() {
	var (
		sender      = flag.String("sender", "", "business phone number to send from")
		recipient   = flag.String("recipient", "", "customer phone number to send to")
		goodsType   = flag.String("goods-type", "digital-goods", "order goods type (digital-goods or physical-goods)")
		body        = flag.String("body", "Your order", "message body text")
		itemCount   = flag.Int("items", 1, "number of example items")
		onSale      = flag.Bool("sale", false, "include sale amounts")
		taxDesc     = flag.String("tax-desc", "", "tax description")
		shipping    = flag.Bool("shipping", false, "include shipping amount")
		shipDesc    = flag.String("shipping-desc", "", "shipping description")
		discount    = flag.Bool("discount", false, "include discount amount")
		discDesc    = flag.String("discount-desc", "", "discount description")
		discProgram = flag.String("discount-program", "", "discount program name")
		catalogID   = flag.String("catalog-id", "", "catalog id")
		headerText  = flag.String("header-text", "", "text header")
		headerImage = flag.String("header-image", "", "image header link")
		footer      = flag.String("footer", "", "footer text")
		expiresIn   = flag.Duration("expires-in", 0, "order expiration, e.g. 24h")
		expDesc     = flag.String("expiration-desc", "", "expiration description")
	)
	flag.Parse()

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, lg, runParams{
		sender:      *sender,
		recipient:   *recipient,
		goodsType:   *goodsType,
		body:        *body,
		itemCount:   *itemCount,
		onSale:      *onSale,
		taxDesc:     *taxDesc,
		shipping:    *shipping,
		shipDesc:    *shipDesc,
		discount:    *discount,
		discDesc:    *discDesc,
		discProgram: *discProgram,
		catalogID:   *catalogID,
		headerText:  *headerText,
		headerImage: *headerImage,
		footer:      *footer,
		expiresIn:   *expiresIn,
		expDesc:     *expDesc,
	}); err != nil {
		lg.Fatal("send-order failed", zap.Error(err))
	}
}

type runParams struct {
	sender, recipient               string
	goodsType, body                 string
	itemCount                       int
	onSale                          bool
	taxDesc                         string
	shipping                        bool
	shipDesc                        string
	discount                        bool
	discDesc, discProgram           string
	catalogID                       string
	headerText, headerImage, footer string
	expiresIn                       time.Duration
	expDesc                         string
}

func run(ctx context.Context, lg *zap.Logger, p runParams) error {
	var cfg cliConfig
	if err := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "WACHECKOUT",
		SkipFiles:        true,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
	}).Load(); err != nil {
		return err
	}
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = graph.DefaultBaseURL
	}

	creds := &credentials.Static{
		Token:         cfg.AccessToken,
		WABA:          cfg.BusinessAccountID,
		PaymentConfig: cfg.PaymentConfiguration,
	}
	client := graph.NewClient(creds, graph.WithBaseURL(cfg.GraphBaseURL))
	directory := graph.NewDirectory(client)
	dispatcher := checkout.NewDispatcher(client, directory, creds)

	referenceID := uuid.NewString()

	details := &order.Details{
		GoodsType:   p.goodsType,
		ReferenceID: referenceID,
		BodyText:    p.body,
		Items:       exampleItems(p.itemCount, p.onSale),
		Tax:         &order.Charge{Amount: order.MustAmount(100), Description: p.taxDesc},
		CatalogID:   p.catalogID,
		FooterText:  p.footer,
	}
	if p.shipping {
		details.Shipping = &order.Charge{Amount: order.MustAmount(100), Description: p.shipDesc}
	}
	if p.discount {
		details.Discount = &order.Discount{
			Amount:      order.MustAmount(200),
			Description: p.discDesc,
			ProgramName: p.discProgram,
		}
	}
	switch {
	case p.headerText != "":
		details.Header = order.TextHeader(p.headerText)
	case p.headerImage != "":
		details.Header = order.ImageHeader(p.headerImage)
	}
	if p.expiresIn > 0 {
		details.Expiration = &order.Expiration{
			Timestamp:   strconv.FormatInt(time.Now().Add(p.expiresIn).Unix(), 10),
			Description: p.expDesc,
		}
	}

	resp, err := dispatcher.SendOrderDetails(ctx, p.sender, p.recipient, details)
	if err != nil {
		return err
	}
	for _, m := range resp.Messages {
		lg.Info("Order details delivered", zap.String("message_id", m.ID))
	}

	if _, err := dispatcher.SendOrderStatus(ctx, p.sender, p.recipient, &order.StatusMessage{
		ReferenceID: referenceID,
		BodyText:    "Order Status Update",
		Status:      order.StatusProcessing,
	}); err != nil {
		return err
	}

	status, err := dispatcher.QueryPaymentStatus(ctx, p.sender, referenceID)
	if err != nil {
		return err
	}
	lg.Info("Payment status", zap.ByteString("payment", status.Raw))
	return nil
}

// exampleItems builds n demo items: "Product i" costs i×10 major units with
// quantity i, optionally 2 major units off on sale.
func exampleItems(n int, onSale bool) []order.Item {
	items := make([]order.Item, 0, n)
	for i := 1; i <= n; i++ {
		it := order.Item{
			Name:     fmt.Sprintf("Product %d", i),
			Amount:   order.MustAmount(int64(1000 * i)),
			Quantity: i,
		}
		if onSale {
			sale := order.MustAmount(int64(1000*i - 200))
			it.SaleAmount = &sale
		}
		items = append(items, it)
	}
	return items
}
