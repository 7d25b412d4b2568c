// cmd/sfactl/importcmd.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvimport"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	userFlagName             = "user"
	utf8FlagName             = "utf8"
	publicStatusFlagName     = "public-status"
	actionStatusFlagName     = "action-status"
	salesPersonFlagName      = "sales-person"
	dataSourceFlagName       = "data-source"
	potentialFlagName        = "potential"
	sharedEditGroupsFlagName = "shared-edit-group"
	sharedViewGroupsFlagName = "shared-view-group"
	sharedEditUsersFlagName  = "shared-edit-user"
	sharedViewUsersFlagName  = "shared-view-user"
)

// importFlags are the raw values of the import subcommands.
type importFlags struct {
	user string
	utf8 bool

	publicStatus string
	actionStatus string
	salesPerson  string
	dataSource   string
	potential    int

	sharedEditGroups []string
	sharedViewGroups []string
	sharedEditUsers  []string
	sharedViewUsers  []string
}

func newImportCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "bulk-load a CSV file as a workspace member",
	}
	cmd.AddCommand(newImportCustomersCmd(g), newImportAddressesCmd(g))
	return cmd
}

func addCommonImportFlags(cmd *cobra.Command, f *importFlags) {
	cmd.Flags().StringVar(&f.user, userFlagName, "", "email of the importing user (required)")
	cmd.Flags().BoolVar(&f.utf8, utf8FlagName, false, "file is UTF-8 (default is Shift_JIS/CP932)")
	_ = cmd.MarkFlagRequired(userFlagName)
}

func newImportCustomersCmd(g *globals) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "customers FILE",
		Short: "import customers (31 columns, header row first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, g, f, args[0], func(ctx context.Context, im *csvimport.Importer, db *mongo.Database, a authz.Actor, r io.Reader) (csvimport.Result, error) {
				opts, err := f.customerOptions(ctx, db, a)
				if err != nil {
					return csvimport.Result{}, err
				}
				return im.ImportCustomers(ctx, r, opts, a)
			})
		},
	}
	addCommonImportFlags(cmd, f)
	cmd.Flags().StringVar(&f.publicStatus, publicStatusFlagName, "", "override visibility: 0 private, 1 view-shared, 2 edit-shared")
	cmd.Flags().StringVar(&f.actionStatus, actionStatusFlagName, "", "override action status (0-3)")
	cmd.Flags().StringVar(&f.salesPerson, salesPersonFlagName, "", "email of the sales person for every row")
	cmd.Flags().StringVar(&f.dataSource, dataSourceFlagName, "", "data source for rows that leave it blank")
	cmd.Flags().IntVar(&f.potential, potentialFlagName, 0, "potential for rows that leave it blank")
	cmd.Flags().StringSliceVar(&f.sharedEditGroups, sharedEditGroupsFlagName, nil, "group ID allowed to edit (repeatable)")
	cmd.Flags().StringSliceVar(&f.sharedViewGroups, sharedViewGroupsFlagName, nil, "group ID allowed to view (repeatable)")
	cmd.Flags().StringSliceVar(&f.sharedEditUsers, sharedEditUsersFlagName, nil, "user ID allowed to edit (repeatable)")
	cmd.Flags().StringSliceVar(&f.sharedViewUsers, sharedViewUsersFlagName, nil, "user ID allowed to view (repeatable)")
	return cmd
}

func newImportAddressesCmd(g *globals) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "addresses FILE",
		Short: "import address-book entries (34 columns, header row first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, g, f, args[0], func(ctx context.Context, im *csvimport.Importer, _ *mongo.Database, a authz.Actor, r io.Reader) (csvimport.Result, error) {
				return im.ImportAddresses(ctx, r, csvimport.AddressOptions{UTF8: f.utf8}, a)
			})
		},
	}
	addCommonImportFlags(cmd, f)
	return cmd
}

type importFunc func(ctx context.Context, im *csvimport.Importer, db *mongo.Database, a authz.Actor, r io.Reader) (csvimport.Result, error)

func runImport(cmd *cobra.Command, g *globals, f *importFlags, path string, run importFunc) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Batch(), logger, "sfactl import")
	defer cancel()

	db, closeFn, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	a, err := resolveActor(ctx, db, f.user)
	if err != nil {
		return err
	}

	res, err := run(ctx, csvimport.New(db, logger), db, a, file)
	if err != nil {
		return describeImportError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (batch %s)\n", res.Rows, res.BatchID)
	return nil
}

// resolveActor loads the importing user. Only confirmed, active workspace
// members may import.
func resolveActor(ctx context.Context, db *mongo.Database, email string) (authz.Actor, error) {
	u, err := userstore.New(db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return authz.Actor{}, fmt.Errorf("no user with email %q", email)
		}
		return authz.Actor{}, err
	}
	if !u.IsActive {
		return authz.Actor{}, fmt.Errorf("user %q has not activated their account", email)
	}
	if st := workspacepolicy.State(u); st != workspacepolicy.Active {
		return authz.Actor{}, fmt.Errorf("user %q is %s, not an active workspace member", email, st)
	}
	groupIDs, err := membershipstore.New(db).GroupIDsForUser(ctx, u.ID)
	if err != nil {
		return authz.Actor{}, err
	}
	return authz.FromUser(u, groupIDs), nil
}

// customerOptions converts the flags, resolving the sales person by email
// inside the importer's workspace.
func (f *importFlags) customerOptions(ctx context.Context, db *mongo.Database, a authz.Actor) (csvimport.CustomerOptions, error) {
	opts := csvimport.CustomerOptions{
		UTF8:         f.utf8,
		PublicStatus: models.PublicStatus(f.publicStatus),
		ActionStatus: models.ActionStatus(f.actionStatus),
		DataSource:   f.dataSource,
		Potential:    f.potential,
	}
	if opts.PublicStatus != "" && !opts.PublicStatus.Valid() {
		return opts, fmt.Errorf("--%s: unknown value %q", publicStatusFlagName, f.publicStatus)
	}
	if opts.ActionStatus != "" && !opts.ActionStatus.Valid() {
		return opts, fmt.Errorf("--%s: unknown value %q", actionStatusFlagName, f.actionStatus)
	}
	if f.potential < 0 {
		return opts, fmt.Errorf("--%s must not be negative", potentialFlagName)
	}

	if f.salesPerson != "" {
		sp, err := userstore.New(db).GetByEmail(ctx, f.salesPerson)
		if err != nil || sp.WorkspaceID == nil || *sp.WorkspaceID != a.WorkspaceID || !sp.IsWorkspaceActive {
			return opts, fmt.Errorf("--%s: %q is not a member of the importing workspace", salesPersonFlagName, f.salesPerson)
		}
		opts.SalesPerson = &sp.ID
	}

	var err error
	if opts.SharedEditGroups, err = parseIDs(sharedEditGroupsFlagName, f.sharedEditGroups); err != nil {
		return opts, err
	}
	if opts.SharedViewGroups, err = parseIDs(sharedViewGroupsFlagName, f.sharedViewGroups); err != nil {
		return opts, err
	}
	if opts.SharedEditUsers, err = parseIDs(sharedEditUsersFlagName, f.sharedEditUsers); err != nil {
		return opts, err
	}
	if opts.SharedViewUsers, err = parseIDs(sharedViewUsersFlagName, f.sharedViewUsers); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseIDs(flag string, raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("--%s: %q is not an ID", flag, s)
		}
		out = append(out, id)
	}
	return out, nil
}

// describeImportError names the failing row for the operator. Nothing was
// written when an import fails.
func describeImportError(err error) error {
	var mismatch *errs.ImportColumnMismatch
	var rowErr *errs.ImportRowError
	switch {
	case errors.As(err, &mismatch):
		return fmt.Errorf("import rolled back: %w", mismatch)
	case errors.As(err, &rowErr):
		return fmt.Errorf("import rolled back: %w", rowErr)
	case errors.Is(err, csvimport.ErrTransactionsUnavailable):
		return fmt.Errorf("import refused: %w", err)
	}
	return err
}
