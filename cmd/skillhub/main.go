package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/cart"
	"github.com/skillhublearning/skillhub-client/internal/checkout"
	"github.com/skillhublearning/skillhub-client/internal/gateway"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/orders"
	"github.com/skillhublearning/skillhub-client/internal/session"
	"github.com/skillhublearning/skillhub-client/internal/wishlist"
	"github.com/skillhublearning/skillhub-client/pkg/config"
	"github.com/skillhublearning/skillhub-client/pkg/env"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
	"github.com/skillhublearning/skillhub-client/pkg/metrics"
	"github.com/skillhublearning/skillhub-client/pkg/redis"
)

const usage = `usage: skillhub <command> [args]

  login <email> <password>        authenticate and persist the session
  signup <username> <email> <pw>  register a new account
  logout                          clear the stored session
  courses [search]                browse the catalog
  cart list                       show the local cart
  cart add <course-id>            add a catalog course to the cart
  cart remove <course-id>         remove a line from the cart
  cart qty <course-id> <+n|-n>    adjust a line's quantity
  wishlist list                   show saved courses
  wishlist add <course-id>        save a catalog course for later
  wishlist remove <course-id>     drop a saved course
  wishlist move <course-id>       move a saved course into the cart
  checkout                        pay for the cart via Razorpay
  orders                          show the order history`

func main() {
	logg := logger.New(logger.Options{ServiceName: "skillhub"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "skillhub",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)
	app, err := bootstrap(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap", err)
		os.Exit(1)
	}
	defer app.close(ctx)

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// application wires the client stack together for one invocation.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	store    session.Store
	sess     *session.Session
	client   *api.Client
	cart     *cart.Manager
	cartSync *cart.Syncer
	wishlist *wishlist.Manager
	wishSync *wishlist.Syncer
	notifier notify.Notifier
	redis    *redis.Client
}

func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*application, error) {
	app := &application{cfg: cfg, log: logg}

	switch {
	case cfg.Session.UsesRedis():
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("bootstrapping redis: %w", err)
		}
		app.redis = redisClient

		store, err := session.NewRedisStore(redisClient, cfg.Session.Namespace, sessionID())
		if err != nil {
			return nil, err
		}
		app.store = store
	case cfg.Session.UsesMemory():
		app.store = session.NewMemoryStore()
	default:
		path := cfg.Session.Path
		if path == "" {
			defaultPath, err := session.DefaultSessionPath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		store, err := session.NewFileStore(path)
		if err != nil {
			return nil, err
		}
		app.store = store
	}
	app.sess = session.NewSession(app.store)
	app.notifier = notify.NewLogNotifier(logg)

	requestMetrics := metrics.NewRequestMetrics(prometheus.NewRegistry())
	client, err := api.NewClient(cfg.API, app.sess, logg, requestMetrics)
	if err != nil {
		return nil, err
	}
	app.client = client

	app.cart = cart.NewManager()
	app.cartSync, err = cart.NewSyncer(client, app.sess, app.notifier, logg)
	if err != nil {
		return nil, err
	}
	app.cartSync.Bind(ctx, app.cart)

	app.wishlist = wishlist.NewManager()
	app.wishSync, err = wishlist.NewSyncer(client, app.sess, app.notifier, logg)
	if err != nil {
		return nil, err
	}
	app.wishSync.Bind(ctx, app.wishlist)

	if app.sess.Authenticated(ctx) {
		if err := app.cartSync.Pull(ctx, app.cart); err != nil {
			logg.Warn(ctx, "could not load the server cart, starting empty")
		}
	}
	return app, nil
}

func (a *application) close(ctx context.Context) {
	// A one-shot command can return while its mutation's server push is
	// still in flight; drain the syncers before tearing anything down.
	a.cart.Wait()
	a.wishlist.Wait()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error(ctx, "error closing redis", err)
		}
	}
}

func (a *application) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "logout":
		return a.store.Clear(ctx)
	case "courses":
		return a.courses(ctx, args)
	case "cart":
		return a.cartCommand(ctx, args)
	case "wishlist":
		return a.wishlistCommand(ctx, args)
	case "checkout":
		return a.checkout(ctx)
	case "orders":
		return a.orders(ctx)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *application) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	result, err := a.client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := session.SaveLogin(ctx, a.store, session.Login{
		Token:    result.Token,
		Username: result.Username,
		Role:     result.Role,
		Github:   result.Github,
		Linkedin: result.Linkedin,
		Avatar:   result.Avatar,
	}); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", result.Username)
	return a.cartSync.Pull(ctx, a.cart)
}

func (a *application) signup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: signup <username> <email> <password>")
	}
	result, err := a.client.Signup(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if err := session.SaveLogin(ctx, a.store, session.Login{
		Token:    result.Token,
		Username: result.Username,
		Role:     result.Role,
	}); err != nil {
		return err
	}
	fmt.Printf("welcome, %s\n", result.Username)
	return nil
}

func (a *application) courses(ctx context.Context, args []string) error {
	search := strings.Join(args, " ")

	var (
		catalog []api.Course
		err     error
	)
	if a.sess.Authenticated(ctx) {
		catalog, err = a.client.AllCourses(ctx, search)
	} else {
		catalog, err = a.client.SampleCourses(ctx)
	}
	if err != nil {
		return err
	}
	for _, course := range catalog {
		fmt.Printf("%s  %-40s %8s  %s\n", course.ID, course.Title, course.Price.StringFixed(2), course.Instructor)
	}
	if len(catalog) == 0 {
		fmt.Println("no courses found")
	}
	return nil
}

func (a *application) cartCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		items := a.cart.Items()
		if len(items) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %-40s x%d  %8s\n", item.ID, item.Title, item.Quantity, item.Price.StringFixed(2))
		}
		fmt.Printf("total: %s\n", a.cart.Total().StringFixed(2))
		return nil
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart add <course-id>")
		}
		item, err := a.lookupCourse(ctx, args[1])
		if err != nil {
			return err
		}
		return a.cart.AddItem(*item)
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart remove <course-id>")
		}
		a.cart.RemoveItem(args[1])
		return nil
	case "qty":
		if len(args) != 3 {
			return fmt.Errorf("usage: cart qty <course-id> <+n|-n>")
		}
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("quantity delta must be a number: %w", err)
		}
		a.cart.SetQuantity(args[1], delta)
		return nil
	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
}

func (a *application) wishlistCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		items := a.wishlist.Items()
		if len(items) == 0 {
			fmt.Println("wishlist is empty")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %-40s %8s\n", item.ID, item.Title, item.Price.StringFixed(2))
		}
		return nil
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: wishlist add <course-id>")
		}
		item, err := a.lookupCourse(ctx, args[1])
		if err != nil {
			return err
		}
		return a.wishlist.Add(*item)
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: wishlist remove <course-id>")
		}
		a.wishlist.Remove(args[1])
		return nil
	case "move":
		if len(args) != 2 {
			return fmt.Errorf("usage: wishlist move <course-id>")
		}
		return a.wishlist.MoveToCart(args[1], a.cart)
	default:
		return fmt.Errorf("unknown wishlist subcommand %q", args[0])
	}
}

func (a *application) checkout(ctx context.Context) error {
	widget, err := gateway.NewBrowserWidget(a.cfg.Gateway, a.log)
	if err != nil {
		return err
	}
	widget.OnReady = func(url string) {
		fmt.Printf("open %s in your browser to complete the payment\n", url)
	}

	orchestrator, err := checkout.New(checkout.Params{
		API:      a.client,
		Cart:     a.cart,
		Store:    a.store,
		Widget:   widget,
		Nav:      &cliNavigator{app: a},
		Notifier: a.notifier,
		Log:      a.log,
		Razorpay: a.cfg.Razorpay,
	})
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}

func (a *application) orders(ctx context.Context) error {
	return a.showOrders(ctx, nil)
}

func (a *application) showOrders(ctx context.Context, pending *api.VerifiedOrder) error {
	tracker, err := orders.NewTracker(a.client, a.store, &cliNavigator{app: a}, a.notifier, a.log)
	if err != nil {
		return err
	}
	if err := tracker.Load(ctx, pending); err != nil {
		return err
	}
	if tracker.Empty() {
		fmt.Println("no orders yet")
		return nil
	}
	for _, order := range tracker.Orders() {
		fmt.Printf("%s  %-10s [%s]  %8s  %s\n",
			order.ID, order.Status, orders.StatusBadge(order.Status), order.Total.StringFixed(2), order.CreatedAt)
	}
	return nil
}

// lookupCourse resolves a catalog id into a cart line.
func (a *application) lookupCourse(ctx context.Context, id string) (*cart.LineItem, error) {
	catalog, err := a.client.AllCourses(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, course := range catalog {
		if course.ID == id {
			return &cart.LineItem{
				ID:         course.ID,
				Title:      course.Title,
				Price:      course.Price,
				Quantity:   1,
				Instructor: course.Instructor,
				Image:      course.Image,
			}, nil
		}
	}
	return nil, fmt.Errorf("course %s not found in the catalog", id)
}

// cliNavigator renders the orchestrator's navigation events in a terminal.
type cliNavigator struct {
	app *application
}

func (n *cliNavigator) ToTracking(ctx context.Context, order *api.VerifiedOrder) {
	if err := n.app.showOrders(ctx, order); err != nil {
		n.app.log.Error(ctx, "loading order tracking", err)
	}
}

func (n *cliNavigator) ToAuth(_ context.Context) {
	fmt.Println("your session has expired, please run: skillhub login <email> <password>")
}

// sessionID names the shared session record when the redis backend is
// used. Terminals sharing one machine share one session.
func sessionID() string {
	host, err := os.Hostname()
	if err != nil {
		host = uuid.NewString()
	}
	return env.Get("SKILLHUB_SESSION_ID", host)
}
