package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/greeter/pkg/controller/github"
	controller "github.com/m-mizutani/greeter/pkg/controller/http"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	githubinfra "github.com/m-mizutani/greeter/pkg/infra/github"
	"github.com/m-mizutani/greeter/pkg/usecase"
	"github.com/m-mizutani/greeter/pkg/utils/async"
	"github.com/m-mizutani/greeter/pkg/utils/errs"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		githubCfg  config.GitHubApp
		messageCfg config.Message
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, messageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := githubCfg.Validate(); err != nil {
				return err
			}
			if err := serverCfg.Validate(); err != nil {
				return err
			}
			logger.Debug("Configuration loaded",
				slog.Any("github", githubCfg),
				slog.Any("server", serverCfg),
				slog.String("message", messageCfg.Path),
			)

			message, err := messageCfg.Load()
			if err != nil {
				return err
			}

			appID, err := githubCfg.ID()
			if err != nil {
				return err
			}
			key, err := githubCfg.Key()
			if err != nil {
				return err
			}
			provider, err := githubinfra.NewProvider(appID, key, githubinfra.WithBaseURL(githubCfg.BaseURL()))
			if err != nil {
				return err
			}

			// Credentials are proven before any delivery is accepted
			app, err := provider.App(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to authenticate as GitHub App")
			}
			logger.Debug("Authenticated as '"+app.Name+"'", slog.Int64("app_id", app.ID), slog.String("slug", app.Slug))

			greetingUC := usecase.NewGreeting(provider, usecase.NewCommentPoster(), message)
			processor := githubcontroller.NewEventProcessor(greetingUC)

			router := usecase.NewRouter()
			router.Register(model.EventTypePullRequest, "opened", processor.HandlePullRequestOpened)
			router.OnError(func(ctx context.Context, event *model.WebhookEvent, err error) {
				errs.Handle(ctx, "Error processing request", err, map[string]string{
					"delivery_id": event.ID,
					"event":       event.Key().String(),
				})
			})

			opts := []controller.Option{
				controller.WithAddr(serverCfg.Addr()),
				controller.WithWebhookPath(serverCfg.WebhookPath),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			}
			var dispatcher *async.Dispatcher
			if serverCfg.AsyncDispatch {
				dispatcher = async.New()
				opts = append(opts, controller.WithDispatcher(dispatcher))
			}

			server, err := controller.NewServer(ctx, usecase.NewWebhook(router), opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return goerr.Wrap(err, "failed to listen", goerr.V("addr", server.Addr))
			}

			errCh := make(chan error, 1)
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			logger.Info("Server is listening for events at: " + serverCfg.WebhookURL())
			logger.Info("Press Ctrl + C to quit.")

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			var serveErr error
			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case serveErr = <-errCh:
				logger.Error("HTTP server stopped unexpectedly", slog.Any("error", serveErr))
			}

			var pending waiter
			if dispatcher != nil {
				pending = dispatcher
			}
			if err := gracefulShutdown(ctx, server, pending); err != nil {
				return err
			}
			if serveErr != nil {
				return goerr.Wrap(serveErr, "HTTP server stopped unexpectedly")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type waiter interface {
	Wait(ctx context.Context) error
}

// gracefulShutdown stops accepting requests, waits for background events when
// pending is set and flushes Sentry. Every step runs even if an earlier one
// fails.
func gracefulShutdown(ctx context.Context, server shutdowner, pending waiter) error {
	logger := ctxlog.From(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if pending != nil {
		if err := pending.Wait(shutdownCtx); err != nil {
			logger.Warn("Background events still running at shutdown", slog.Any("error", err))
		}
	}
	sentry.Flush(2 * time.Second)

	if shutdownErr != nil {
		return goerr.Wrap(shutdownErr, "failed to shutdown server gracefully")
	}
	return nil
}
