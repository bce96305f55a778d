// tripctl is a command-line shell over the Tripwiser client core: the same
// session store, repository, linking coordinator and payment composer the
// mobile app embeds, driven from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/composer"
	"github.com/mmynk/tripwiser/internal/config"
	"github.com/mmynk/tripwiser/internal/linking"
	"github.com/mmynk/tripwiser/internal/models"
	"github.com/mmynk/tripwiser/internal/session"
	"github.com/mmynk/tripwiser/internal/session/sqlitekv"
	"github.com/mmynk/tripwiser/internal/viewmodel"
	"github.com/mmynk/tripwiser/pkg/logging"
)

const usage = `usage: tripctl <command> [flags]

commands:
  signup        register an account
  login         authenticate and store the session
  logout        clear the stored session
  whoami        show the cached user snapshot
  trips         list my trips
  create        create a trip
  join          join a trip via invite code
  pay           record an individual payment
  split         split a payment equally across members
  settle        record a settlement transfer
  transactions  list a trip's transactions
  settlements   show server-computed settlement suggestions
`

type app struct {
	cfg      config.Config
	sessions *session.Store
	client   *api.Client
}

func main() {
	logging.Setup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	kv, err := sqlitekv.New(cfg.SessionDBPath)
	if err != nil {
		slog.Error("Failed to open session database", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	sessions, err := session.New(kv)
	if err != nil {
		slog.Error("Failed to restore session", "error", err)
		os.Exit(1)
	}

	metrics := api.NewMetrics(prometheus.NewRegistry())
	client := api.New(cfg.BaseURL, sessions,
		api.WithTimeouts(api.Timeouts{
			Connect:   cfg.ConnectTimeout,
			ReadWrite: cfg.RWTimeout,
			Overall:   cfg.OverallTimeout,
		}),
		api.WithDialAttempts(cfg.DialAttempts),
		api.WithMetrics(metrics),
	)

	a := &app{cfg: cfg, sessions: sessions, client: client}
	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		slog.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return a.signup(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.sessions.Logout()
	case "whoami":
		return a.whoami()
	case "trips":
		return a.trips(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "join":
		return a.join(ctx, args)
	case "pay":
		return a.pay(ctx, args, false)
	case "settle":
		return a.pay(ctx, args, true)
	case "split":
		return a.split(ctx, args)
	case "transactions":
		return a.transactions(ctx, args)
	case "settlements":
		return a.settlements(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	phone := fs.String("phone", "", "phone number")
	userType := fs.String("type", "user", "user type")
	fs.Parse(args)

	resp, err := a.client.Signup(ctx, api.SignupRequest{
		Name: *name, Email: *email, Password: *password,
		Phone: *phone, UserType: *userType,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s (user %s)\n", resp.Message, resp.UserID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	otp := fs.String("otp", "", "one-time code (OTP login instead of password)")
	fs.Parse(args)

	var resp *api.LoginResponse
	var err error
	if *otp != "" {
		resp, err = a.client.VerifyOTP(ctx, api.VerifyOTPRequest{Email: *email, OTP: *otp})
	} else {
		resp, err = a.client.Login(ctx, api.LoginRequest{Email: *email, Password: *password})
	}
	if err != nil {
		return err
	}

	user := resp.User
	if err := a.sessions.Login(models.Session{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         &user,
	}); err != nil {
		return err
	}
	fmt.Printf("logged in as %s %s\n", user.FirstName, user.LastName)
	return nil
}

func (a *app) whoami() error {
	if !a.sessions.IsLoggedIn() {
		fmt.Println("not logged in")
		return nil
	}
	u := a.sessions.CurrentUser()
	if u == nil {
		fmt.Println("logged in (no cached profile)")
		return nil
	}
	fmt.Printf("%s %s <%s> (%s)\n", u.FirstName, u.LastName, u.Email, u.UserID)
	return nil
}

func (a *app) trips(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trips", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	vm := viewmodel.NewTripList(a.client)
	vm.Load(ctx, *page)
	snap := vm.Snapshot()
	if snap.ErrorMessage != "" {
		return fmt.Errorf("%s", snap.ErrorMessage)
	}
	for _, trip := range snap.Trips {
		fmt.Printf("%s  %-24s  invite=%s  members=%d\n",
			trip.TripID, trip.TripName, trip.InviteCode, len(trip.Members))
	}
	fmt.Printf("%d trips total\n", snap.TotalCount)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "trip name")
	desc := fs.String("desc", "", "description")
	members := fs.String("members", "", "comma-separated member names")
	fs.Parse(args)

	resp, err := a.client.CreateTrip(ctx, api.CreateTripRequest{
		TripName:    *name,
		Description: *desc,
		Members:     splitList(*members),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s: trip %s, invite code %s\n", resp.Message, resp.TripID, resp.InviteCode)
	return nil
}

func (a *app) join(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	code := fs.String("code", "", "invite code")
	name := fs.String("name", "", "free member name to claim (omit for automatic linking)")
	fs.Parse(args)

	vm := viewmodel.NewJoinTrip(a.client)
	vm.OnCodeChanged(ctx, *code)
	snap := vm.Snapshot()
	if snap.ErrorMessage != "" {
		return fmt.Errorf("%s", snap.ErrorMessage)
	}
	if snap.Partition == nil {
		return fmt.Errorf("invite code too short (need %d characters)", linking.MinCodeLength)
	}
	fmt.Printf("trip %q: free=%v claimed=%v\n",
		snap.Partition.TripName, snap.Partition.Free, snap.Partition.NotFree)

	if *name != "" {
		vm.LinkSelected(ctx, *name)
	} else {
		u := a.sessions.CurrentUser()
		if u == nil {
			return fmt.Errorf("log in before joining a trip")
		}
		vm.LinkByIdentity(ctx, u.UserID)
	}
	snap = vm.Snapshot()
	if snap.ErrorMessage != "" {
		return fmt.Errorf("%s", snap.ErrorMessage)
	}
	fmt.Printf("linked to %q\n", snap.LinkedTrip)
	return nil
}

func (a *app) pay(ctx context.Context, args []string, settlement bool) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	payer := fs.String("from", "", "payer name")
	receiver := fs.String("to", "", "receiver name")
	amount := fs.String("amount", "", "decimal amount, e.g. 100.00")
	desc := fs.String("desc", "", "description")
	fs.Parse(args)

	comp := composer.New(a.client, composer.WithFanoutWidth(a.cfg.FanoutWidth))
	comp.SetForm(composer.Form{
		TripID:       *tripID,
		PayerName:    *payer,
		ReceiverName: *receiver,
		AmountText:   *amount,
		Description:  *desc,
	})

	var resp *api.PayResponse
	var err error
	if settlement {
		resp, err = comp.Settle(ctx)
	} else {
		resp, err = comp.PayIndividual(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s (transaction %s)\n", resp.Message, resp.TransactionID)
	return nil
}

func (a *app) split(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	payer := fs.String("from", "", "payer name")
	receivers := fs.String("to", "", "comma-separated receiver names")
	amount := fs.String("amount", "", "total decimal amount to divide")
	desc := fs.String("desc", "", "description")
	includeSelf := fs.Bool("include-self", true, "count the payer in the division")
	fs.Parse(args)

	comp := composer.New(a.client, composer.WithFanoutWidth(a.cfg.FanoutWidth))
	comp.SetForm(composer.Form{
		TripID:      *tripID,
		PayerName:   *payer,
		Receivers:   splitList(*receivers),
		AmountText:  *amount,
		Description: *desc,
		IncludeSelf: *includeSelf,
	})

	result, err := comp.SplitEqually(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s per person across %d people\n", result.PerPerson, result.TotalPeople)
	for _, call := range result.Results {
		if call.Err != nil {
			fmt.Printf("  %-16s FAILED: %v\n", call.Receiver, call.Err)
		} else {
			fmt.Printf("  %-16s ok (transaction %s)\n", call.Receiver, call.TransactionID)
		}
	}
	fmt.Printf("outcome: %s (%d ok, %d failed)\n", result.Outcome, result.Succeeded, result.Failed)
	return nil
}

func (a *app) transactions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	resp, err := a.client.GetTransactions(ctx, api.GetTransactionsRequest{
		TripID: *tripID, Page: *page, PageSize: viewmodel.DefaultPageSize,
	})
	if err != nil {
		return err
	}
	for _, tx := range resp.Transactions {
		fmt.Printf("%s  %-10s  %s -> %s  %s  %s\n",
			tx.ID, tx.Type, tx.PayerName, tx.ReceiverName, tx.Amount, tx.Description)
	}
	fmt.Printf("%d transactions total\n", resp.TotalCount)
	return nil
}

func (a *app) settlements(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settlements", flag.ExitOnError)
	tripID := fs.String("trip", "", "trip id")
	fs.Parse(args)

	resp, err := a.client.GetSettlements(ctx, api.GetSettlementsRequest{TripID: *tripID})
	if err != nil {
		return err
	}
	for _, s := range resp.Settlements {
		fmt.Printf("%s pays %s %s\n", s.From, s.To, s.Amount)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
