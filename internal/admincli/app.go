package admincli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/repomanager"
)

type App struct {
	config      *Config
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	out         io.Writer
}

func NewApp(c *Config) (*App, error) {

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &App{config: c, db: db, repomanager: rm, out: os.Stdout}, nil
}

// Run dispatches the command verb. Flags are parsed separately, so the verb
// is the first non-flag argument.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.db.Close()

	cmd := ""
	for _, arg := range args {
		if len(arg) > 0 && arg[0] != '-' {
			cmd = arg
			break
		}
	}

	switch cmd {
	case "adduser":
		return a.AddUser(ctx)
	case "":
		return errors.New("usage: conduitctl adduser -u <username> -e <email> [-d <dsn>]")
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// AddUser registers an account directly in the database, prompting for the
// password on the terminal.
func (a *App) AddUser(ctx context.Context) error {

	if a.config.Username == "" || a.config.Email == "" {
		return errors.New("adduser requires -u <username> and -e <email>")
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user := &models.User{Username: a.config.Username, Email: a.config.Email}
	if err := auth.SetPassword(user, string(password)); err != nil {
		return err
	}

	user, err = a.repomanager.Users(a.db).Create(ctx, user)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created user %s (%s)\n", user.Username, user.ID)
	return nil
}
