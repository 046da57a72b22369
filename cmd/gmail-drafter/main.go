// Gmail drafter writes styled Gmail reply drafts with a local or remote LLM.
// It serves a JSON API, the OAuth flow and an MCP endpoint on one listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-drafter/internal/api"
	"github.com/hal9000y/gmail-drafter/internal/assistant"
	"github.com/hal9000y/gmail-drafter/internal/auth"
	"github.com/hal9000y/gmail-drafter/internal/config"
	"github.com/hal9000y/gmail-drafter/internal/draft"
	"github.com/hal9000y/gmail-drafter/internal/gservice"
	"github.com/hal9000y/gmail-drafter/internal/llm"
	"github.com/hal9000y/gmail-drafter/internal/store"
	"github.com/hal9000y/gmail-drafter/internal/tool"
)

const shutdownTimeout = 3 * time.Second

var errStdioClosed = errors.New("stdio session ended")

type flags struct {
	httpAddr   string
	tokenFile  string
	oauthURL   string
	envFile    string
	stdio      bool
	logFile    string
	configFile string
	storePath  string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.httpAddr, "http-addr", "localhost:0", "HTTP listen address")
	flag.StringVar(&f.tokenFile, "oauth-token-file", "./data/gmail-drafter-token.json", "Where to cache the Google OAuth token, empty to keep it in memory")
	flag.StringVar(&f.oauthURL, "oauth-url", "", "OAuth redirect URL, defaults to the listener address")
	flag.StringVar(&f.envFile, "env-file", "", "Path to env file")
	flag.BoolVar(&f.stdio, "stdio", false, "Also serve MCP over stdio (disables stdout logging)")
	flag.StringVar(&f.logFile, "log-file", "", "Log to this file instead of stdout")
	flag.StringVar(&f.configFile, "config", "", "Path to TOML config file")
	flag.StringVar(&f.storePath, "store", "", "Path to the profile database, overrides the config file")
	flag.Parse()

	return f
}

func main() {
	f := parseFlags()

	closeLog := setupLogger(f.stdio, f.logFile)
	defer closeLog()

	cfg := mustLoadConfig(f)

	ln, err := net.Listen("tcp", f.httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}
	oauthCfg := mustCreateOauthCfg(ln.Addr().String(), cfg.OAuth, f.oauthURL)

	tok, err := auth.NewToken(oauthCfg, f.tokenFile)
	if err != nil {
		panic(fmt.Errorf("auth.NewToken failed: %w", err))
	}
	defer func() {
		if err := tok.Persist(); err != nil {
			log.Println(fmt.Errorf("tok.Persist failed: %w", err))
		}
	}()

	profiles, err := store.Open(cfg.Store.Path)
	if err != nil {
		panic(fmt.Errorf("store.Open failed: %w", err))
	}
	defer func() {
		if err := profiles.Close(); err != nil {
			log.Println(fmt.Errorf("profiles.Close failed: %w", err))
		}
	}()

	gen := draft.NewGenerator(llm.New(cfg.LLM.Client(nil)), cfg.LLM.Generator())
	svc := assistant.NewService(gservice.NewGmail(tok), profiles, gen, cfg.Mail.Assistant())
	mcpServer := tool.NewServer(svc)

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(cfg.API.DraftsPerMinute, 1))), max(cfg.API.DraftBurst, 1))

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok))
	mux.Handle("/api/", api.NewHandler(svc, limiter))
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil))

	log.Printf("LLM backend %s (flavor %s), model %s", llm.NormalizeURL(cfg.LLM.URL), cfg.LLM.Flavor, cfg.LLM.Model)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(oauthCfg.RedirectURL + "?redirect=1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveHTTP(ctx, &http.Server{Handler: mux}, ln) })
	if f.stdio {
		g.Go(func() error { return serveStdio(ctx, mcpServer) })
	}

	if err := g.Wait(); err != nil {
		log.Println("Stopped:", err)
		return
	}
	log.Println("Shutdown signal received")
}

// serveHTTP serves until ctx is done, then shuts the server down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Println("Starting http server on", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("srv.Serve failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown failed: %w", err)
	}

	log.Println("HTTP server stopped")
	return nil
}

// serveStdio runs the MCP session on stdin/stdout. A client hanging up ends
// the whole process.
func serveStdio(ctx context.Context, srv *mcp.Server) error {
	log.Println("Starting stdio transport")

	err := srv.Run(ctx, &mcp.StdioTransport{})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("srv.Run failed: %w", err)
	}
	return errStdioClosed
}

func mustLoadConfig(f flags) config.Config {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil {
			panic(fmt.Errorf("godotenv.Load failed: %w", err))
		}
	}

	cfg, err := config.Load(f.configFile)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		panic(fmt.Errorf("cfg.ApplyEnv failed: %w", err))
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("cfg.Validate failed: %w", err))
	}

	return cfg
}

func mustCreateOauthCfg(lnAddr string, oc config.OAuthConfig, redirectURL string) *oauth2.Config {
	if oc.ClientID == "" || oc.ClientSecret == "" {
		panic("OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET (or [oauth] in the config file) must be set")
	}

	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://%s/oauth", lnAddr)
	}

	return &oauth2.Config{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope, gmail.GmailModifyScope, gmail.GmailComposeScope},
		Endpoint:     google.Endpoint,
	}
}

// setupLogger routes the std logger. Stdout belongs to the MCP session in
// stdio mode, so logs go to the file or nowhere.
func setupLogger(stdio bool, logFile string) func() {
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("os.OpenFile failed: %w", err))
		}
		log.SetOutput(f)
		return func() { _ = f.Close() }
	case stdio:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stdout)
	}

	return func() {}
}

var browserCommands = map[string][]string{
	"linux":   {"xdg-open"},
	"darwin":  {"open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

func openBrowser(url string) {
	args, ok := browserCommands[runtime.GOOS]
	if !ok {
		log.Printf("Open this link to sign in: %s", url)
		return
	}

	if err := exec.Command(args[0], append(args[1:], url)...).Start(); err != nil {
		log.Printf("Could not open browser automatically: %v; open this link to sign in: %s", err, url)
	}
}
