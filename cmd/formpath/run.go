package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/nmbl-labs/formpath"
	"github.com/nmbl-labs/formpath/pkg/adapters/memory"
	"github.com/nmbl-labs/formpath/pkg/adapters/redis"
	"github.com/nmbl-labs/formpath/pkg/adapters/sqlite"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/persistence"
	"github.com/nmbl-labs/formpath/pkg/ports"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Walk a flow interactively",
	Long: `Starts an interactive session over a flow file. Each prompt expects the
current step's data as a JSON object; ':back', ':goto <step>' and
':quit' navigate.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSession(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("store", "", "Persistence backend: memory, redis or sqlite (none by default)")
	runCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for --store redis")
	runCmd.Flags().String("sqlite-path", "formpath.db", "Database file for --store sqlite")
	runCmd.Flags().String("session", "", "Session id for the persistence key (random by default)")
	runCmd.Flags().Duration("ttl", 0, "Expiry for persisted progress (0 disables)")
}

func runSession(cmd *cobra.Command, args []string) error {
	def, err := loadFlowFile(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	opts := []formpath.Option{formpath.WithLogger(logger)}

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer closeStore()

		session, _ := cmd.Flags().GetString("session")
		if session == "" {
			session = uuid.NewString()
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		opts = append(opts,
			formpath.WithPersistence(store,
				persistence.WithKey(fmt.Sprintf("formpath:flow:%s:%s", def.ID, session)),
				persistence.WithTTL(ttl),
			),
			formpath.WithAutoPersist(true),
		)
		fmt.Printf("Session: %s\n", session)
	}

	flow, err := formpath.New(def, opts...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if restored, err := flow.Hydrate(ctx); err != nil {
		return err
	} else if restored {
		fmt.Println("Restored saved progress.")
	}

	fmt.Printf("--- %s ---\n", def.ID)
	reader := bufio.NewReader(os.Stdin)

	for !flow.IsComplete() {
		state := flow.State()
		printStep(def, state)

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		switch {
		case line == ":quit":
			return nil
		case line == ":back":
			if !flow.Back() {
				fmt.Println("Already at the first step.")
			}
			continue
		case strings.HasPrefix(line, ":goto "):
			target := domain.StepID(strings.TrimSpace(strings.TrimPrefix(line, ":goto ")))
			if !flow.GoTo(target) {
				fmt.Printf("Cannot navigate to %q.\n", target)
			}
			continue
		case line == "":
			continue
		}

		var input map[string]any
		if err := json.Unmarshal([]byte(line), &input); err != nil {
			fmt.Printf("Expected a JSON object: %v\n", err)
			continue
		}

		advanced, err := flow.Next(ctx, input)
		if err != nil {
			return err
		}
		if !advanced {
			for _, fe := range flow.FieldErrors() {
				fmt.Printf("  ✗ %s\n", fe.Error())
			}
		}
	}

	fmt.Println("Flow complete! ✅")
	if err := flow.Clear(ctx); err != nil {
		logger.Warn("clearing saved progress failed", "err", err)
	}
	return nil
}

func printStep(def *domain.FlowDefinition, state *formpath.FlowState) {
	completed, total := 0, len(state.Path)
	for _, id := range state.Path {
		if state.CompletedSteps[id] {
			completed++
		}
	}
	fmt.Printf("\nStep %q (%d/%d completed)\n", state.CurrentStep, completed, total)

	step, ok := def.Step(state.CurrentStep)
	if !ok {
		return
	}
	if fields, ok := step.Schema.(schema.Schema); ok {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, fields[name].Name())
		}
	}
}

// openStore builds the persistence backend selected by --store. The
// returned closer is non-nil whenever the store is.
func openStore(cmd *cobra.Command) (ports.Store, func(), error) {
	kind, _ := cmd.Flags().GetString("store")
	switch kind {
	case "":
		return nil, nil, nil
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		store := redis.New(addr, "", 0)
		return store, func() { _ = store.Close() }, nil
	case "sqlite":
		path, _ := cmd.Flags().GetString("sqlite-path")
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetConnMaxIdleTime(time.Minute)
		store, err := sqlite.NewStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want memory, redis or sqlite)", kind)
	}
}
