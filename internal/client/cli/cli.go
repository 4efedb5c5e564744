// Package cli реализует команды консольного клиента AgroCare.
//
// Перед выполнением команды клиент проверяет сохраненную сессию и пропускает
// команду через шлюз: защищенные команды требуют подтвержденного токена,
// login и register недоступны при активной сессии.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/magabrotheeeer/agrocare-backend/internal/client/api"
	"github.com/magabrotheeeer/agrocare-backend/internal/client/session"
)

// readPassword тестовая прослойка для term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// App консольный клиент.
type App struct {
	api     *api.Client
	session *session.Store
	reader  *bufio.Reader
	out     io.Writer
}

// New создает консольный клиент поверх API-клиента и хранилища сессии.
func New(apiClient *api.Client, store *session.Store) *App {
	return &App{
		api:     apiClient,
		session: store,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run инициализирует сессию и выполняет команду.
func (a *App) Run(ctx context.Context, command string) error {
	if err := a.session.Init(ctx); err != nil {
		return err
	}

	switch command {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "farms":
		return a.farms(ctx)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) promptPassword() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	raw, err := readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (a *App) register(ctx context.Context) error {
	if a.session.Gate(session.RoutePublicOnly) == session.RedirectToHome {
		fmt.Fprintln(a.out, "Already logged in, run logout first")
		return nil
	}

	username, err := a.prompt("Username")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	phone, err := a.prompt("Phone")
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	data, err := a.api.Register(ctx, username, email, phone, password)
	if err != nil {
		return a.reportAPIError(err)
	}

	if err := a.session.StoreToken(ctx, data.Token, data.User); err != nil {
		return err
	}
	if a.session.State() != session.Authenticated {
		fmt.Fprintln(a.out, "Session could not be confirmed, try again later")
		return nil
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", data.User.Username)
	return nil
}

func (a *App) login(ctx context.Context) error {
	if a.session.Gate(session.RoutePublicOnly) == session.RedirectToHome {
		fmt.Fprintln(a.out, "Already logged in, run logout first")
		return nil
	}

	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	data, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.reportAPIError(err)
	}

	if err := a.session.StoreToken(ctx, data.Token, data.User); err != nil {
		return err
	}
	if a.session.State() != session.Authenticated {
		fmt.Fprintln(a.out, "Session could not be confirmed, try again later")
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", data.User.Username)
	return nil
}

func (a *App) logout() error {
	if err := a.session.ClearToken(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami() error {
	if a.session.Gate(session.RouteProtected) == session.RedirectToLogin {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	user, isAdmin := a.session.User()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>", user.Username, user.Email)
	if isAdmin {
		fmt.Fprint(a.out, " (admin)")
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) farms(ctx context.Context) error {
	if a.session.Gate(session.RouteProtected) == session.RedirectToLogin {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	farms, err := a.api.ListFarms(ctx, a.session.Token())
	if err != nil {
		return a.reportAPIError(err)
	}

	if len(farms) == 0 {
		fmt.Fprintln(a.out, "No farms yet")
		return nil
	}
	for _, f := range farms {
		fmt.Fprintf(a.out, "%d\t%s\t%s\t%.1f ha\t%s\n", f.ID, f.Name, f.Location, f.SizeHectares, f.SoilType)
	}
	return nil
}

func (a *App) reportAPIError(err error) error {
	if errors.Is(err, api.ErrServerUnreachable) {
		fmt.Fprintln(a.out, "Server unavailable, try again later")
		return nil
	}
	return err
}
