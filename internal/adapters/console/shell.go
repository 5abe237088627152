package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
)

// Deps are the screens the shell drives.
type Deps struct {
	Auth     *app.AuthService
	Dir      *app.Directory
	Workflow *app.Workflow
	Merchant *app.MerchantHotels
}

// Shell reads one command per line and renders the result.
type Shell struct {
	d   Deps
	out io.Writer
	p   painter
}

func NewShell(d Deps, out io.Writer, color bool) *Shell {
	return &Shell{d: d, out: out, p: painter{color: color}}
}

const usage = `commands:
  login <email> <password>        register <name> <email> <password> <admin|merchant>
  whoami                          logout
admin:
  list                            search [name=..] [owner=..] [status=..] [city=..]
  reset   next   prev   refresh   show <id>
  approve <id>   reject <id> <reason>   reapprove <id>   offline <id>   restore <id>
merchant:
  mine   open <id>   new   set <field> <value>   room add <name> <area> <bed> <price> <stock>
  room rm <id>   save   delete <id>
  help   quit`

// Run processes lines from in until EOF, "quit" or ctx ends.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "易宿 back-office, type `help` for commands")
	if u, err := s.d.Auth.Guard(ctx); err == nil {
		fmt.Fprintf(s.out, "welcome back, %s (%s)\n", u.Name, u.Role)
		s.landing(ctx, u.Role)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := s.Exec(ctx, line); err != nil {
			log.Debug().Err(err).Str("line", line).Msg("command failed")
		}
	}
}

// SessionExpired is hooked to the session's 401 handler.
func (s *Shell) SessionExpired() {
	s.forget()
	fmt.Fprintln(s.out, s.p.paint(ansiYellow, "session expired, please log in again"))
}

// forget drops screens loaded for the previous account.
func (s *Shell) forget() {
	s.d.Dir.Forget()
	s.d.Merchant.Forget()
}

// Exec runs a single command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, usage)
		return nil
	case "login":
		return s.login(ctx, args)
	case "register":
		return s.register(ctx, args)
	case "whoami":
		u, err := s.d.Auth.Guard(ctx)
		if err != nil {
			return s.report(err)
		}
		fmt.Fprintf(s.out, "%s <%s> %s\n", u.Name, u.Email, u.Role)
		return nil
	case "logout":
		err := s.d.Auth.Logout(ctx)
		s.forget()
		if err != nil {
			return s.report(err)
		}
		fmt.Fprintln(s.out, "logged out")
		return nil
	case "list", "search", "reset", "next", "prev", "refresh", "show",
		"approve", "reject", "reapprove", "offline", "restore":
		if !s.allowed(ctx, domain.RoleAdmin) {
			return domain.ErrForbidden
		}
		return s.admin(ctx, cmd, rest, args)
	case "mine", "open", "new", "set", "room", "save", "delete":
		if !s.allowed(ctx, domain.RoleMerchant) {
			return domain.ErrForbidden
		}
		return s.merchant(ctx, cmd, rest, args)
	}
	fmt.Fprintf(s.out, "unknown command %q, type `help`\n", cmd)
	return nil
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: login <email> <password>")
		return nil
	}
	u, err := s.d.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return s.report(err)
	}
	s.forget()
	fmt.Fprintf(s.out, "logged in as %s (%s)\n", u.Name, u.Role)
	s.landing(ctx, u.Role)
	return nil
}

// landing opens the first screen for the role.
func (s *Shell) landing(ctx context.Context, role domain.Role) {
	switch role {
	case domain.RoleAdmin:
		if s.d.Dir.Load(ctx) == nil {
			s.p.directory(s.out, s.d.Dir.Snapshot())
		}
	case domain.RoleMerchant:
		if s.d.Merchant.FetchList(ctx) == nil {
			s.p.hotels(s.out, s.d.Merchant.List())
		}
	}
}

func (s *Shell) register(ctx context.Context, args []string) error {
	if len(args) != 4 {
		fmt.Fprintln(s.out, "usage: register <name> <email> <password> <admin|merchant>")
		return nil
	}
	if err := s.d.Auth.Register(ctx, args[0], args[1], args[2], domain.Role(args[3])); err != nil {
		return s.report(err)
	}
	fmt.Fprintln(s.out, "registered, you can log in now")
	return nil
}

// allowed checks the signed-in role and explains a refusal.
func (s *Shell) allowed(ctx context.Context, role domain.Role) bool {
	_, err := s.d.Auth.RequireRole(ctx, role)
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrUnauthorized):
		fmt.Fprintln(s.out, "please log in first")
	case errors.Is(err, domain.ErrForbidden):
		fmt.Fprintf(s.out, "this command needs the %s role\n", role)
	default:
		_ = s.report(err)
	}
	return false
}

func (s *Shell) admin(ctx context.Context, cmd, rest string, args []string) error {
	dir := s.d.Dir
	var err error
	switch cmd {
	case "list":
		err = dir.Refresh(ctx)
	case "search":
		for _, kv := range args {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				fmt.Fprintf(s.out, "expected key=value, got %q\n", kv)
				return nil
			}
			switch k {
			case "name":
				dir.SetName(v)
			case "owner":
				dir.SetOwnerName(v)
			case "city":
				dir.SetCity(v)
			case "status":
				st := domain.HotelStatus("")
				if v != "" && v != "all" {
					if st, err = domain.ParseStatus(v); err != nil {
						fmt.Fprintln(s.out, err)
						return nil
					}
				}
				dir.SetStatus(st)
			default:
				fmt.Fprintf(s.out, "unknown filter %q\n", k)
				return nil
			}
		}
		err = dir.Search(ctx)
	case "reset":
		err = dir.Reset(ctx)
	case "next":
		err = dir.NextPage(ctx)
	case "prev":
		err = dir.PrevPage(ctx)
	case "refresh":
		err = dir.Refresh(ctx)
	case "show":
		id, ok := s.id(args)
		if !ok {
			return nil
		}
		h, found := dir.Lookup(id)
		if !found {
			fmt.Fprintf(s.out, "hotel %d is not on this page\n", id)
			return nil
		}
		s.p.listing(s.out, h)
		return nil
	default:
		return s.action(ctx, domain.Action(cmd), rest, args)
	}
	if err != nil {
		return err
	}
	s.p.directory(s.out, dir.Snapshot())
	return nil
}

func (s *Shell) action(ctx context.Context, a domain.Action, rest string, args []string) error {
	id, ok := s.id(args)
	if !ok {
		return nil
	}
	reason := ""
	if a == domain.ActionReject {
		_, reason, _ = strings.Cut(rest, " ")
	}
	// the workflow toasts its own outcome
	if err := s.d.Workflow.Apply(ctx, a, id, reason); err != nil {
		return err
	}
	s.p.directory(s.out, s.d.Dir.Snapshot())
	return nil
}

func (s *Shell) merchant(ctx context.Context, cmd, rest string, args []string) error {
	m := s.d.Merchant
	switch cmd {
	case "mine":
		if err := m.FetchList(ctx); err != nil {
			return s.report(err)
		}
		s.p.hotels(s.out, m.List())
	case "open":
		id, ok := s.id(args)
		if !ok {
			return nil
		}
		h, err := m.FetchDetail(ctx, id)
		if err != nil {
			return s.report(err)
		}
		s.p.hotel(s.out, h)
	case "new":
		m.StartNew()
		fmt.Fprintln(s.out, "new hotel opened, fill it in with `set` and `room add`")
	case "set":
		return s.set(rest)
	case "room":
		return s.room(args)
	case "save":
		h, err := m.SaveCurrent(ctx)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) && ve.Field == "" {
				fmt.Fprintln(s.out, ve.Msg)
			}
			return err
		}
		s.p.hotel(s.out, h)
	case "delete":
		id, ok := s.id(args)
		if !ok {
			return nil
		}
		return m.Delete(ctx, id)
	}
	return nil
}

func (s *Shell) set(rest string) error {
	field, value, _ := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)
	var bad error
	err := s.d.Merchant.Edit(func(h *domain.Hotel) {
		switch field {
		case "name":
			h.Name = value
		case "english":
			h.EnglishName = value
		case "address":
			h.Address = value
		case "star":
			n, err := strconv.Atoi(value)
			if err != nil {
				bad = fmt.Errorf("star must be a number")
				return
			}
			h.Star = n
		case "open":
			h.OpenDate = value
		case "cover":
			h.CoverImage = value
		case "desc":
			h.Description = value
		case "tags":
			h.Tags = strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '，' })
		case "images":
			h.DetailImages = strings.Fields(value)
		default:
			bad = fmt.Errorf("unknown field %q (name, english, address, star, open, cover, desc, tags, images)", field)
		}
	})
	if err != nil {
		fmt.Fprintln(s.out, domain.UserMessage(err))
		return err
	}
	if bad != nil {
		fmt.Fprintln(s.out, bad)
	}
	return bad
}

func (s *Shell) room(args []string) error {
	m := s.d.Merchant
	if len(args) >= 2 && args[0] == "rm" {
		id, ok := s.id(args[1:])
		if !ok {
			return nil
		}
		if err := m.DeleteRoom(id); err != nil {
			fmt.Fprintln(s.out, domain.UserMessage(err))
			return err
		}
		return s.showCurrent()
	}
	if len(args) != 6 || args[0] != "add" {
		fmt.Fprintln(s.out, "usage: room add <name> <area> <bed> <price> <stock> | room rm <id>")
		return nil
	}
	area, err1 := strconv.Atoi(args[2])
	price, err2 := decimal.NewFromString(args[4])
	stock, err3 := strconv.Atoi(args[5])
	if err := errors.Join(err1, err2, err3); err != nil {
		fmt.Fprintln(s.out, "area, price and stock must be numbers")
		return err
	}
	if _, err := m.AddRoom(domain.Room{Name: args[1], Area: area, BedInfo: args[3], Price: price, Stock: stock}); err != nil {
		fmt.Fprintln(s.out, domain.UserMessage(err))
		return err
	}
	return s.showCurrent()
}

func (s *Shell) showCurrent() error {
	if h, ok := s.d.Merchant.Current(); ok {
		s.p.hotel(s.out, h)
	}
	return nil
}

func (s *Shell) id(args []string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "missing hotel id")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(s.out, "invalid id %q\n", args[0])
		return 0, false
	}
	return id, true
}

// report prints a failure that no screen has already shown. 401 is left to
// the session hook.
func (s *Shell) report(err error) error {
	if !errors.Is(err, domain.ErrUnauthorized) {
		fmt.Fprintln(s.out, s.p.paint(ansiRed, domain.UserMessage(err)))
	}
	return err
}
