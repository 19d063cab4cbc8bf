package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"pocketbook/alert"
	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/consts"
	"pocketbook/ledger"
	"pocketbook/plaindb"
	"pocketbook/server"
	"pocketbook/user"
)

const defaultAlertInterval = time.Hour

func openStores(db plaindb.DB) (server.Stores, error) {
	users, err := user.NewStore(db)
	if err != nil {
		return server.Stores{}, err
	}
	categories, err := category.NewStore(db)
	if err != nil {
		return server.Stores{}, err
	}
	txns, err := ledger.NewStore(db, categories)
	if err != nil {
		return server.Stores{}, err
	}
	budgets, err := budget.NewStore(db, categories)
	if err != nil {
		return server.Stores{}, err
	}
	alerts, err := alert.NewStore(db)
	if err != nil {
		return server.Stores{}, err
	}
	return server.Stores{
		Users:      users,
		Categories: categories,
		Ledger:     txns,
		Budgets:    budgets,
		Alerts:     alerts,
	}, nil
}

func start(port uint16, stores server.Stores, noAlerts bool, alertInterval time.Duration) error {
	logger, err := zap.NewProduction()
	if os.Getenv("DEVELOPMENT") == "true" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	if !noAlerts {
		checker := alert.NewChecker(stores.Users, stores.Ledger, stores.Budgets, stores.Alerts, logger)
		done := make(chan struct{})
		defer close(done)
		go checker.Start(alertInterval, done)
	}

	gin.SetMode(gin.ReleaseMode)
	err = server.Run(fmt.Sprintf("0.0.0.0:%d", port), stores, logger)
	if err != nil {
		logger.Error("Server run failed", zap.Error(err))
	}
	return err
}

func usage(flagSet *flag.FlagSet) string {
	oldOutput := flagSet.Output()
	buf := bytes.NewBuffer(nil)
	flagSet.SetOutput(buf)
	flagSet.Usage()
	flagSet.SetOutput(oldOutput)
	return buf.String()
}

func requireFlags(flagSet *flag.FlagSet) (err error) {
	setFlags := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	var missingFlags []string
	flagSet.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Usage, "Required: ") && !setFlags[f.Name] {
			missingFlags = append(missingFlags, f.Name)
		}
	})
	if len(missingFlags) > 0 {
		return errors.Errorf("Missing required flags: %s", missingFlags)
	}
	return nil
}

func handleErrors(db *plaindb.DB) (usageErr bool, err error) {
	flagSet := flag.NewFlagSet("pocketbook", flag.ContinueOnError)
	serverPort := flagSet.Uint("port", 8080, "Sets the port the server listens on")
	dbDirName := flagSet.String("data", "", "Required: Path to a database directory")
	noAlerts := flagSet.Bool("no-alerts", false, "Disables the periodic budget overspend check")
	alertInterval := flagSet.Duration("alert-interval", defaultAlertInterval, "Time between budget overspend checks")
	requestVersion := flagSet.Bool("version", false, "Print the version and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return true, err
	}
	if *requestVersion {
		fmt.Println(consts.Version)
		return false, nil
	}

	if err := requireFlags(flagSet); err != nil {
		return true, errors.Errorf("%s\n%s", err.Error(), usage(flagSet))
	}

	port := uint16(*serverPort)
	if uint(port) != *serverPort {
		return true, errors.Errorf("Port number must be a positive 16-bit integer: %d", *serverPort)
	}

	*db, err = plaindb.Open(*dbDirName, plaindb.VersionControl())
	if err != nil {
		return false, err
	}

	stores, err := openStores(*db)
	if err != nil {
		return false, err
	}

	return false, start(port, stores, *noAlerts, *alertInterval)
}

func shutdown(db plaindb.DB, code int) {
	if db != nil {
		if err := db.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(code)
}

func main() {
	var db plaindb.DB

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c)
		for {
			s := <-c
			fmt.Println(`{"level":"info","msg":"Handling signal: ` + s.String() + `"}`)
			switch s {
			case os.Interrupt:
				shutdown(db, 0)
			case os.Kill:
				shutdown(db, 1)
			}
		}
	}()
	usageErr, err := handleErrors(&db)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if usageErr {
			shutdown(db, 2)
		}
		shutdown(db, 1)
	}
}
