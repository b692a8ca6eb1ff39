package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/filestore"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/httpapi"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/notify"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/rabbitmq"
	redisslot "github.com/dwikikusuma/shoping-cart/internal/cart/infra/redis"
	"github.com/dwikikusuma/shoping-cart/pkg/config"
	"github.com/dwikikusuma/shoping-cart/pkg/logger"
	"github.com/dwikikusuma/shoping-cart/pkg/metrics"
	"github.com/dwikikusuma/shoping-cart/pkg/shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const usage = `usage: cart [flags] [command]

commands:
  list              show the cart (default outside a terminal UI)
  add ID            add one unit of a product
  remove ID         drop a product from the cart
  set ID AMOUNT     set the amount of a product already in the cart
  check             compare every line with current stock
  tui               interactive cart (default)

flags:
`

type command struct {
	name      string
	productID int
	amount    int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "tui"}, nil
	}

	name, rest := args[0], args[1:]
	want := map[string]int{"list": 0, "check": 0, "tui": 0, "add": 1, "remove": 1, "set": 2}
	n, ok := want[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", name)
	}
	if len(rest) != n {
		return command{}, fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(rest))
	}

	cmd := command{name: name}
	if n >= 1 {
		id, err := strconv.Atoi(rest[0])
		if err != nil || id <= 0 {
			return command{}, fmt.Errorf("invalid product id %q", rest[0])
		}
		cmd.productID = id
	}
	if n == 2 {
		amount, err := strconv.Atoi(rest[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid amount %q", rest[1])
		}
		cmd.amount = amount
	}
	return cmd, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cart:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	apiURL := fs.String("api", cfg.APIBaseURL, "storefront API base URL")
	storage := fs.String("storage", cfg.Storage, "cart slot backend: file|redis")
	metricsAddr := fs.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9091")
	logFile := fs.String("log-file", "", "write logs here instead of stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.APIBaseURL = *apiURL
	cfg.Storage = *storage

	cmd, err := parseCommand(fs.Args())
	if err != nil {
		fs.Usage()
		return err
	}

	logOut := io.Writer(os.Stderr)
	switch {
	case *logFile != "":
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	case cmd.name == "tui":
		// stderr would tear through the rendered screen
		logOut = io.Discard
	}
	log := logger.New(logger.Options{Service: "cart", Env: cfg.AppEnv, Level: cfg.LogLevel, Output: logOut})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var recorder app.Recorder
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewCartMetrics(reg)
		stop := serveMetrics(*metricsAddr, reg, log)
		defer stop()
	}

	bridge := &programRef{}
	var extra app.Notifier
	if cmd.name == "tui" {
		extra = app.NotifierFunc(bridge.notify)
	}

	store, closeAll, err := buildStore(ctx, cfg, log, recorder, extra)
	if err != nil {
		return err
	}
	defer closeAll()

	switch cmd.name {
	case "tui":
		return runTUI(ctx, store, bridge)
	case "list":
		printCart(stdout, store.Cart())
		return nil
	case "check":
		return printAvailability(ctx, stdout, store)
	}

	var opErr error
	switch cmd.name {
	case "add":
		opErr = store.AddProduct(ctx, cmd.productID)
	case "remove":
		opErr = store.RemoveProduct(ctx, cmd.productID)
	case "set":
		opErr = store.UpdateProductAmount(ctx, app.UpdateAmount{ProductID: cmd.productID, Amount: cmd.amount})
	}
	if err := store.Flush(ctx); err != nil {
		return err
	}
	if opErr != nil {
		if kind, ok := domain.KindOf(opErr); ok {
			return errors.New(kind.Message())
		}
		return opErr
	}
	printCart(stdout, store.Cart())
	return nil
}

// buildStore wires the slot, the storefront client and the notifier chain.
// The returned func releases every connection it opened.
func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger, rec app.Recorder, extra app.Notifier) (*app.Store, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var slot app.Slot
	switch cfg.Storage {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closers = append(closers, func() { _ = client.Close() })

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		slot = redisslot.NewCartSlot(client, cfg.CartKey)
	case config.StorageFile:
		slot = filestore.NewCartSlot(cfg.CartFile)
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	api := httpapi.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})

	notifiers := notify.Fanout{notify.NewLog(log)}
	if cfg.AMQPURL != "" {
		conn, ch, err := rabbitmq.SetupConn(cfg.AMQPURL, cfg.NotifyExchange, 3)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications stay local", slog.Any("err", err))
		} else {
			closers = append(closers, func() {
				_ = ch.Close()
				_ = conn.Close()
			})
			notifiers = append(notifiers, rabbitmq.NewNotifier(ch, cfg.NotifyExchange))
		}
	}
	if extra != nil {
		notifiers = append(notifiers, extra)
	}

	store, err := app.NewStore(ctx, slot, api, api,
		app.WithNotifier(notifiers),
		app.WithLogger(log),
		app.WithRecorder(rec),
		app.WithMaxConcurrent(cfg.MaxConcurrent),
	)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return store, closeAll, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", slog.Any("err", err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func printCart(w io.Writer, cart domain.Cart) {
	if len(cart) == 0 {
		fmt.Fprintln(w, "Carrinho vazio")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUTO\tQTD\tPREÇO\tSUBTOTAL")
	for _, it := range cart {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.Title, it.Amount, formatPrice(it.Price), formatPrice(it.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", formatPrice(cart.Total()))
	_ = tw.Flush()
}

func printAvailability(ctx context.Context, w io.Writer, store *app.Store) error {
	report, err := store.CheckAvailability(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQTD\tESTOQUE\tOK")
	for _, a := range report {
		ok := "sim"
		if !a.Sufficient {
			ok = "não"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", a.ProductID, a.Requested, a.InStock, ok)
	}
	return tw.Flush()
}

// formatPrice renders v as Brazilian reais, e.g. R$ 1.179,90.
func formatPrice(v float64) string {
	cents := int64(v*100 + 0.5)
	if v < 0 {
		cents = int64(v*100 - 0.5)
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}
