package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	surveyweb "github.com/bertomartin/ashoka-survey-web"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/config"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	dbConnString    string
	migrationsTable string
	verbose         bool
	accessToken     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbConnString, "db", "d", "", "Database connection string (defaults to the DB_* environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	migrateCmd.PersistentFlags().StringVar(&migrationsTable, "table", "schema_migrations", "Table that records applied migrations")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	directoryCmd.PersistentFlags().StringVar(&accessToken, "token", "", "OAuth access token for authenticated directory calls")
	directoryCmd.AddCommand(orgsCmd)
	directoryCmd.AddCommand(deletedOrgsCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashSecretCmd)
	rootCmd.AddCommand(directoryCmd)
}

var rootCmd = &cobra.Command{
	Use:   "surveyctl",
	Short: "surveyctl is an operator tool for the survey web application",
	Long:  `surveyctl applies schema migrations, hashes the directory webhook secret and inspects the organization directory.`,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()

		if err := migrator(cmd.Context(), db).MigrateUp(); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		fmt.Println("Schema is up to date")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations",
	Long:  `Roll back the given number of migrations, one by default.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				log.Fatalf("Invalid step count %q: %v", args[0], err)
			}
			steps = n
		}

		db := openDB()
		defer db.Close()

		if err := migrator(cmd.Context(), db).MigrateDown(steps); err != nil {
			log.Fatalf("Failed to roll back: %v", err)
		}
		fmt.Printf("Rolled back %d migration(s)\n", steps)
	},
}

var hashSecretCmd = &cobra.Command{
	Use:   "hash-secret [secret]",
	Short: "Hash the deleted-organizations webhook secret",
	Long:  `Print the argon2id hash to configure as WEBHOOK_SECRET_HASH.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.NewSecretHasher().Hash(args[0])
		if err != nil {
			log.Fatalf("Failed to hash secret: %v", err)
		}
		fmt.Println(hash)
	},
}

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Query the organization directory",
}

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List organizations visible to an access token",
	Run: func(cmd *cobra.Command, args []string) {
		if accessToken == "" {
			log.Fatal("An access token is required")
		}

		client, url := directoryClient()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		orgs, err := client.Organizations(ctx, accessToken, nil)
		if err != nil {
			log.Fatalf("Failed to query directory: %v", err)
		}

		if verbose {
			fmt.Printf("%d organization(s) at %s\n", len(orgs), url)
		}
		for _, org := range orgs {
			fmt.Printf("%d\t%s\n", org.ID, org.Name)
		}
	},
}

var deletedOrgsCmd = &cobra.Command{
	Use:   "deleted",
	Short: "List organizations the directory reports as deleted",
	Run: func(cmd *cobra.Command, args []string) {
		client, url := directoryClient()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		ids, err := client.DeletedOrganizations(ctx)
		if err != nil {
			log.Fatalf("Failed to query directory: %v", err)
		}

		if verbose {
			fmt.Printf("%d deleted organization(s) at %s\n", len(ids), url)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

func directoryClient() (*directory.Client, string) {
	cfg := config.Load()
	return directory.NewClient(&directory.Config{
		BaseURL: cfg.Directory.URL,
		Timeout: cfg.Directory.Timeout,
	}), cfg.Directory.URL
}

func openDB() *sql.DB {
	conn := dbConnString
	if conn == "" {
		cfg := config.Load()
		conn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
			cfg.Database.SearchPath,
		)
	}

	db, err := sql.Open("postgres", conn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func migrator(ctx context.Context, db *sql.DB) *surveyweb.Config {
	if ctx == nil {
		ctx = context.Background()
	}
	m := surveyweb.NewConfig(ctx, db)
	m.SetMigrationsTable(migrationsTable)
	return m
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
