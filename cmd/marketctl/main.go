// Command marketctl drives the delivery marketplace from a terminal. When the
// backend cannot be reached it keeps working against a built-in mock.
package main

import (
	"context"
	"delivery-marketplace/internal/app"
	"delivery-marketplace/internal/config"
	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/marketplace"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/session"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

const usage = `usage: marketctl <command> [flags]

commands:
  login -u USER -p PASSWORD
  register -u USER -e EMAIL -p PASSWORD -role sender|traveler
  logout
  whoami
  jobs
  job ID
  post-job -goods NAME -pickup ADDR -drop ADDR -at RFC3339
  bids JOB_ID
  bid -job ID -amount N -message TEXT
  chat [-follow] JOB_ID
  send JOB_ID TEXT...
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.LogLevel)

	client, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client, os.Stdout, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		if sessionDropped(client) {
			fmt.Fprintln(os.Stderr, "session ended; sign in again with: marketctl login")
		}
		os.Exit(1)
	}
}

// viewFor names the screen a command works on. Commands on a job count as
// that job's page, so a session rejected mid-command is sent home.
func viewFor(cmd string, args []string) string {
	switch cmd {
	case "login", "logout":
		return session.ViewHome
	case "register":
		return session.ViewRegister
	case "whoami":
		return "/profile"
	case "post-job":
		return "/jobs/new"
	case "bid":
		for i, a := range args {
			if v, ok := strings.CutPrefix(strings.TrimLeft(a, "-"), "job="); ok {
				return "/jobs/" + v
			}
			if strings.TrimLeft(a, "-") == "job" && i+1 < len(args) {
				return "/jobs/" + args[i+1]
			}
		}
	case "job", "bids", "chat", "send":
		for _, a := range args {
			if id, err := argID([]string{a}); err == nil {
				return fmt.Sprintf("/jobs/%d", id)
			}
		}
	}
	return "/jobs"
}

// sessionDropped reports whether the backend rejected the session and the
// guard sent the user home
func sessionDropped(client *app.Client) bool {
	return len(client.Nav.Redirects()) > 0
}

// describe renders err the way the backend worded it, when it did
func describe(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var apiErr *marketerrors.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func run(ctx context.Context, client *app.Client, out io.Writer, cmd string, args []string) error {
	client.Nav.Show(viewFor(cmd, args))
	if cmd != "login" && cmd != "register" {
		if err := client.Start(ctx); err != nil {
			return err
		}
	}

	switch cmd {
	case "login":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		username := fs.String("u", "", "username")
		password := fs.String("p", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		user, err := client.Session.Login(ctx, validation.LoginForm{Username: *username, Password: *password})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "signed in as %s (%s)\n", user.Username, user.Role)

	case "register":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		form := validation.RegisterForm{}
		fs.StringVar(&form.Username, "u", "", "username")
		fs.StringVar(&form.Email, "e", "", "email")
		fs.StringVar(&form.Password, "p", "", "password")
		fs.StringVar(&form.Role, "role", "", "sender or traveler")
		fs.StringVar(&form.Phone, "phone", "", "phone")
		fs.StringVar(&form.VehicleType, "vehicle", "", "vehicle type")
		if err := fs.Parse(args); err != nil {
			return err
		}
		user, err := client.Session.Register(ctx, form)
		if errors.Is(err, session.ErrAutoLogin) {
			fmt.Fprintf(out, "registered %s; sign in with marketctl login\n", user.Username)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered and signed in as %s (%s)\n", user.Username, user.Role)

	case "logout":
		return client.Session.Logout(ctx)

	case "whoami":
		user, err := requireUser(client)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s> id=%d role=%s\n", user.Username, user.Email, user.ID, user.Role)

	case "jobs":
		user, err := requireUser(client)
		if err != nil {
			return err
		}
		jobs, err := client.Jobs.List(ctx, user)
		if err != nil {
			return err
		}
		printJobs(out, jobs)

	case "job":
		id, err := argID(args)
		if err != nil {
			return err
		}
		job, err := client.Jobs.Get(ctx, id)
		if err != nil {
			return err
		}
		printJobs(out, []models.Job{job})

	case "post-job":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		form := validation.JobForm{}
		at := fs.String("at", "", "delivery time, RFC3339")
		fs.StringVar(&form.GoodsName, "goods", "", "goods name")
		fs.StringVar(&form.PickupLocation, "pickup", "", "pickup location")
		fs.StringVar(&form.DropLocation, "drop", "", "drop location")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *at != "" {
			t, err := time.Parse(time.RFC3339, *at)
			if err != nil {
				return fmt.Errorf("-at: %w", err)
			}
			form.DeliveryTime = t
		}
		job, err := client.Jobs.Create(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "posted job %d\n", job.ID)

	case "bids":
		id, err := argID(args)
		if err != nil {
			return err
		}
		bids, err := client.Bids.List(ctx, id)
		if err != nil {
			return err
		}
		printBids(out, bids, client)

	case "bid":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		form := validation.BidForm{}
		fs.Int64Var(&form.Job, "job", 0, "job id")
		fs.Float64Var(&form.Amount, "amount", 0, "amount")
		fs.StringVar(&form.Message, "message", "", "message to the sender")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if user, ok := client.Session.User(); ok {
			existing, err := client.Bids.List(ctx, form.Job)
			if err == nil {
				if bid, found := marketplace.FindUserBid(existing, user); found {
					return fmt.Errorf("you already bid %.2f on job %d", bid.Amount, form.Job)
				}
			}
		}
		bid, err := client.Bids.Place(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "placed bid %d (%s)\n", bid.ID, bid.Status)

	case "chat":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		follow := fs.Bool("follow", false, "keep polling for new messages")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := argID(fs.Args())
		if err != nil {
			return err
		}
		if !*follow {
			msgs, err := client.Chat.Messages(ctx, id)
			if err != nil {
				return err
			}
			printMessages(out, msgs, 0)
			return nil
		}
		var seen int
		err = client.Chat.Poll(ctx, id, client.PollInterval, func(msgs []models.Message, err error) {
			if err != nil {
				fmt.Fprintln(out, "refresh failed:", describe(err))
				return
			}
			seen = printMessages(out, msgs, seen)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case "send":
		if len(args) < 2 {
			return errors.New("send needs a job id and a message")
		}
		id, err := argID(args[:1])
		if err != nil {
			return err
		}
		msgs, err := client.Chat.Send(ctx, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printMessages(out, msgs, 0)

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

func requireUser(client *app.Client) (models.User, error) {
	user, ok := client.Session.User()
	if !ok {
		return models.User{}, fmt.Errorf("not signed in: %w", marketerrors.ErrUnauthenticated)
	}
	return user, nil
}

func argID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printJobs(out io.Writer, jobs []models.Job) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGOODS\tFROM\tTO\tDELIVER BY")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", j.ID, j.GoodsName, j.PickupLocation, j.DropLocation,
			j.DeliveryTime.Format(time.RFC3339))
	}
	_ = w.Flush()
}

func printBids(out io.Writer, bids []models.Bid, client *app.Client) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRAVELER\tAMOUNT\tSTATUS\tMESSAGE")
	for _, b := range bids {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n", b.ID, b.TravelerUsername, b.Amount, b.Status, b.Message)
	}
	_ = w.Flush()

	if user, ok := client.Session.User(); ok && user.IsTraveler() {
		if bid, found := marketplace.FindUserBid(bids, user); found {
			fmt.Fprintf(out, "\nyour bid: %.2f (%s)\n", bid.Amount, bid.Status)
		}
	}
}

// printMessages prints the messages after the first skip and returns the new count
func printMessages(out io.Writer, msgs []models.Message, skip int) int {
	if skip > len(msgs) {
		skip = 0
	}
	for _, m := range msgs[skip:] {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.SenderUsername, m.Text)
	}
	return len(msgs)
}
