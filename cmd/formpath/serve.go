package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/nmbl-labs/formpath/internal/adapters/http"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/flowfile"
)

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Start the stateless HTTP server",
	Long:  `Serves the given flow files over a JSON API. The server holds no sessions; flow state travels in each request body.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		logger := newLogger(cmd)

		var defs []*domain.FlowDefinition
		if len(args) == 0 {
			def, err := loadFlowFile(cmd, nil)
			if err != nil {
				fmt.Printf("Error loading flow: %v\n", err)
				os.Exit(1)
			}
			defs = append(defs, def)
		}
		for _, path := range args {
			def, err := flowfile.Load(path, nil)
			if err != nil {
				fmt.Printf("Error loading flow %s: %v\n", path, err)
				os.Exit(1)
			}
			defs = append(defs, def)
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(defs, logger),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Serving %d flow(s) on %s\n", len(defs), srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nShutting down... Signal: %v\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete: %v\n", err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
