package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/ledger"
	"github.com/flipledger/flipledger/internal/model"
)

// newReferenceCommands returns the vendor, job, installer and rehab-category
// command groups.
func newReferenceCommands(opts *rootOptions) []*cobra.Command {
	return []*cobra.Command{
		newNamedCommand(opts, "vendor", "Manage vendors", (*ledger.SQLiteStore).CreateVendor, (*ledger.SQLiteStore).SetVendorActive, "active"),
		newNamedCommand(opts, "job", "Manage contracting jobs", (*ledger.SQLiteStore).CreateJob, (*ledger.SQLiteStore).SetJobOpen, "open"),
		newNamedCommand(opts, "installer", "Manage installers", (*ledger.SQLiteStore).CreateInstaller, nil, ""),
		newNamedCommand(opts, "rehab-category", "Manage rehab categories", (*ledger.SQLiteStore).CreateRehabCategory, nil, ""),
		newRefsCommand(opts),
	}
}

func newRefsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refs",
		Short: "List active vendors, open jobs, installers, rehab categories and category accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ref, err := e.store.ReferenceData(cmd.Context())
			if err != nil {
				return err
			}
			data := pterm.TableData{{"Kind", "ID", "Name"}}
			for _, v := range ref.Vendors {
				data = append(data, []string{"vendor", strconv.FormatInt(v.ID, 10), v.Name})
			}
			for _, j := range ref.Jobs {
				data = append(data, []string{"job", strconv.FormatInt(j.ID, 10), j.Name})
			}
			for _, in := range ref.Installers {
				data = append(data, []string{"installer", strconv.FormatInt(in.ID, 10), in.Name})
			}
			for _, c := range ref.RehabCategories {
				data = append(data, []string{"rehab-category", strconv.FormatInt(c.ID, 10), c.Name})
			}
			for _, a := range ref.Accounts {
				data = append(data, []string{"account", a.Code, a.Name})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

type createFunc func(s *ledger.SQLiteStore, ctx context.Context, name string) (int64, error)

type flagFunc func(s *ledger.SQLiteStore, ctx context.Context, id int64, on bool) error

func newNamedCommand(opts *rootOptions, use, short string, create createFunc, setFlag flagFunc, flagName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := create(e.store, c.Context(), args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printf("Added %s #%d %s\n", use, id, args[0])
			return nil
		},
	})

	if setFlag != nil {
		var off bool
		set := &cobra.Command{
			Use:   "set-" + flagName + " ID",
			Short: "Mark a " + use + " " + flagName + " (or with --off, not " + flagName + ")",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return model.ValidationError{Field: "id", Description: fmt.Sprintf("%q is not a number", args[0])}
				}
				e, err := openEnv(opts)
				if err != nil {
					return err
				}
				defer e.Close()

				if err := setFlag(e.store, c.Context(), id, !off); err != nil {
					return err
				}
				pterm.Success.Printf("Updated %s #%d\n", use, id)
				return nil
			},
		}
		set.Flags().BoolVar(&off, "off", false, "clear the flag")
		cmd.AddCommand(set)
	}
	return cmd
}
