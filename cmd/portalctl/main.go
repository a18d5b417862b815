package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"selfreg-backend/internal/config"
	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/export"
	"selfreg-backend/internal/repository"
	"selfreg-backend/internal/service"
)

// operator is the actor used for every command; the CLI runs with database credentials.
var operator = domain.Actor{Username: "portalctl", Role: domain.RoleSuperAdmin}

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "portalctl",
		Usage: "Operator tooling for the self-employment registration portal",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			createAdminCommand(),
			balancesCommand(),
			gradesCommand(),
			exportRegistrationsCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type env struct {
	cfg    config.Config
	pg     *db.Postgres
	logger *slog.Logger
}

func open(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pg, err := db.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return &env{cfg: cfg, pg: pg, logger: logger}, nil
}

func (e *env) access() service.Authorizer {
	return service.Authorizer{Grants: repository.PermissionRepository{DB: e.pg}}
}

func (e *env) activity() service.ActivityRecorder {
	return service.ActivityRecorder{Store: repository.ActivityLogRepository{DB: e.pg}, Logger: e.logger}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			if err := db.Migrate(ctx, e.pg); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert the starter categories and panchayaths",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "district", Value: "Malappuram", Usage: "district the default panchayaths belong to"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			categories, err := repository.CategoryRepository{DB: e.pg}.SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
			panchayaths, err := repository.PanchayathRepository{DB: e.pg}.SeedDefaults(ctx, c.String("district"), repository.MalappuramPanchayaths)
			if err != nil {
				return fmt.Errorf("seed panchayaths: %w", err)
			}
			fmt.Printf("seeded %d categories and %d panchayaths\n", categories, panchayaths)
			return nil
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "role", Value: string(domain.RoleLocalAdmin), Usage: "super_admin, local_admin or user_admin"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			svc := service.AdminService{
				Admins:   repository.AdminUserRepository{DB: e.pg},
				Grants:   repository.PermissionRepository{DB: e.pg},
				Access:   e.access(),
				Activity: e.activity(),
			}
			admin, err := svc.Create(ctx, operator, service.CreateAdminInput{
				Username: c.String("username"),
				Password: c.String("password"),
				Role:     domain.AdminRole(c.String("role")),
				IsActive: true,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created admin %q (id %d, role %s)\n", admin.Username, admin.ID, admin.Role)
			return nil
		},
	}
}

func balancesCommand() *cli.Command {
	return &cli.Command{
		Name:  "balances",
		Usage: "Print cash in hand and cash at bank",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			svc := service.LedgerService{Store: repository.LedgerRepository{DB: e.pg}, Access: e.access()}
			st, err := svc.Balances(ctx, operator)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			cur := e.cfg.DefaultCurrency
			fmt.Fprintf(w, "Approved fees\t%d %s\n", st.Totals.ApprovedFees, cur)
			fmt.Fprintf(w, "Transfers\t%d %s\n", st.Totals.Transfers, cur)
			fmt.Fprintf(w, "Cash expenses\t%d %s\n", st.Totals.CashExpenses, cur)
			fmt.Fprintf(w, "Bank expenses\t%d %s\n", st.Totals.BankExpenses, cur)
			fmt.Fprintf(w, "Cash in hand\t%d %s\n", st.Balances.CashInHand, cur)
			fmt.Fprintf(w, "Cash at bank\t%d %s\n", st.Balances.CashAtBank, cur)
			return w.Flush()
		},
	}
}

func gradesCommand() *cli.Command {
	return &cli.Command{
		Name:  "grades",
		Usage: "Print the panchayath grade ranking",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			svc := service.ReportService{
				Registrations: repository.RegistrationRepository{DB: e.pg},
				Ledger:        repository.LedgerRepository{DB: e.pg},
				Access:        e.access(),
				Logger:        e.logger,
			}
			report, err := svc.PanchayathGrades(ctx, operator)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPANCHAYATH\tDISTRICT\tREGISTRATIONS\tREVENUE\tGRADE")
			for i, g := range report.Localities {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", i+1, g.Name, g.District, g.Registrations, g.Revenue, g.Grade)
			}
			return w.Flush()
		},
	}
}

func exportRegistrationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-registrations",
		Usage: "Write registrations to a CSV or XLSX file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Required: true, Usage: "output path; .xlsx selects a workbook, anything else CSV"},
			&cli.StringFlag{Name: "status", Usage: "pending, approved or rejected"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var q service.ListQuery
			if raw := c.String("status"); raw != "" {
				status := domain.RegistrationStatus(raw)
				if !status.Valid() {
					return fmt.Errorf("invalid status %q", raw)
				}
				q.Filter.Status = &status
			}

			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.pg.Close()
			svc := service.RegistrationService{
				Registrations: repository.RegistrationRepository{DB: e.pg},
				Categories:    repository.CategoryRepository{DB: e.pg},
				Access:        e.access(),
				Logger:        e.logger,
			}
			items, err := svc.List(ctx, operator, q)
			if err != nil {
				return err
			}

			out := c.String("out")
			now := time.Now()
			var data []byte
			if strings.EqualFold(filepath.Ext(out), ".xlsx") {
				data, err = export.RegistrationsXLSX(items, now)
			} else {
				data, err = export.RegistrationsCSV(items, now)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d registrations to %s\n", len(items), out)
			return nil
		},
	}
}
