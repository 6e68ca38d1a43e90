package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/store"
)

func newCompanyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a company",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			c := &domain.Company{Name: args[0]}
			if err := store.NewCompanyStore(a.exec).Save(cmd.Context(), c); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created company %d\n", c.ID)
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a company with its products",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := store.NewCompanyStore(a.exec).FindByIDFetchProducts(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%d %s (%d products)\n", c.ID, c.Name, len(c.Products))
			for _, p := range c.Products {
				_, _ = fmt.Fprintf(out, "  %d %s\n", p.ID, p.Name)
			}
			return nil
		}),
	}

	cmd.AddCommand(create, show)
	return cmd
}

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}

	var companyID int64
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a product for a company",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStores(func(cmd *cobra.Command, args []string) error {
			p := &domain.Product{Name: args[0], CompanyID: companyID}
			if err := store.NewProductStore(a.exec).Save(cmd.Context(), p); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created product %d\n", p.ID)
			return nil
		}),
	}
	create.Flags().Int64Var(&companyID, "company", 0, "Owning company id")
	_ = create.MarkFlagRequired("company")

	cmd.AddCommand(create)
	return cmd
}
