package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/polls/internal/db"
	"gitlab.com/ranfdev/polls/internal/models"
	"gitlab.com/ranfdev/polls/internal/render"
	"gitlab.com/ranfdev/polls/internal/routes"
	"gitlab.com/ranfdev/polls/web"
)

const usage = `Usage:
	- start
	- migrate [up/down/drop]
	- createuser <username> <password>
	- addquestion [-pub duration] [-end duration] <text> <choice> <choice>...
`

func main() {
	if len(os.Args) == 1 {
		printUsage(os.Stdout)
		return
	}
	envConfig := models.ReadEnvConfig()
	if err := envConfig.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "start":
		server := PollsServer{EnvConfig: envConfig}
		server.Setup()
		server.Run()
		return
	case "migrate":
		if len(os.Args) < 3 {
			printUsage(os.Stdout)
			return
		}
		switch os.Args[2] {
		case "up":
			err = db.MigrateUp(envConfig.DatabaseURL)
		case "down":
			err = db.MigrateDown(envConfig.DatabaseURL)
		case "drop":
			err = db.Drop(envConfig.DatabaseURL)
		default:
			printUsage(os.Stdout)
			return
		}
	case "createuser":
		err = createUser(&envConfig, os.Args[2:])
	case "addquestion":
		err = addQuestion(&envConfig, os.Args[2:])
	default:
		printUsage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("Done")
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func createUser(envConfig *models.EnvConfig, args []string) error {
	if len(args) != 2 {
		return errors.New(usage)
	}
	ctx := context.Background()
	sdb, err := db.Connect(ctx, envConfig)
	if err != nil {
		return err
	}
	defer sdb.Close()
	user, err := sdb.CreateUser(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func addQuestion(envConfig *models.EnvConfig, args []string) error {
	flags := flag.NewFlagSet("addquestion", flag.ContinueOnError)
	pub := flags.Duration("pub", 0, "publish after this delay (negative for the past)")
	end := flags.Duration("end", 0, "close voting this long after now (0 never closes)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		return errors.New(usage)
	}

	now := time.Now()
	req := &models.QuestionReq{
		QuestionText: flags.Arg(0),
		PubDate:      now.Add(*pub),
		Choices:      flags.Args()[1:],
	}
	if *end != 0 {
		endDate := now.Add(*end)
		req.EndDate = &endDate
	}

	ctx := context.Background()
	sdb, err := db.Connect(ctx, envConfig)
	if err != nil {
		return err
	}
	defer sdb.Close()
	q, err := sdb.CreateQuestion(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created question %d: %s\n", q.ID, q)
	return nil
}

type PollsServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	database   *db.SharedDB
	templates  *render.Templates
}

func (server *PollsServer) setupLogger() {
	var writer io.Writer
	if server.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		writer = os.Stdout
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	server.logger = zerolog.New(writer).With().Timestamp().Logger()
}
func (server *PollsServer) setupTemplates() {
	tmpls, err := render.GetTemplates(web.FS, server.Debug, server.logger)
	if err != nil {
		server.logger.Fatal().Err(err).Msg("Parsing templates")
	}
	server.templates = tmpls
}
func (server *PollsServer) setupDB() {
	err := db.MigrateUp(server.DatabaseURL)
	if err != nil {
		server.logger.Fatal().Err(err).Send()
	}
	database, err := db.Connect(context.Background(), &server.EnvConfig)
	if err != nil {
		server.logger.Fatal().AnErr("Connecting to db", err).Send()
	}
	server.database = database
}
func (server *PollsServer) setupRouter() {
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		server.logger.Fatal().Err(err).Send()
	}
	server.router = routes.NewRouter(&server.EnvConfig, server.database, server.logger, server.templates, static)
}
func (server *PollsServer) setupHttpServer() {
	server.addr = fmt.Sprintf(":%s", server.EnvConfig.Port)
	server.httpServer = &http.Server{
		Addr:         server.addr,
		Handler:      server.router,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}
func (server *PollsServer) Setup() {
	server.setupLogger()
	server.setupTemplates()
	server.setupDB()
	server.setupRouter()
	server.setupHttpServer()
}
func (server *PollsServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.httpServer.Shutdown(ctx); err != nil {
		server.logger.Error().
			Err(err).
			Msg("Error shutting down")
	}
	server.database.Close()
}
func (server *PollsServer) Run() {
	server.logger.Info().Str("server_address", server.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		err := server.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.logger.Fatal().Err(err).Msg("Listening")
		}
	}()
	server.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	server.logger.Info().Msg("Shutting down gracefully")
	server.Shutdown()
}
