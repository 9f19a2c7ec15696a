package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"clientrepo/internal/domain"
	"clientrepo/internal/handler"
	"clientrepo/internal/repository"
	"clientrepo/internal/repository/filter"

	"github.com/spf13/cobra"
)

// queryFlags mirror the HTTP list parameters
type queryFlags struct {
	surname    string
	minBalance string
	maxBalance string
	hasEmail   string
	sort       string
	order      string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.surname, "surname", "", "surname prefix (case-insensitive)")
	cmd.Flags().StringVar(&q.minBalance, "min-balance", "", "lowest balance, inclusive")
	cmd.Flags().StringVar(&q.maxBalance, "max-balance", "", "highest balance, inclusive")
	cmd.Flags().StringVar(&q.hasEmail, "has-email", "", "true or false")
	cmd.Flags().StringVar(&q.sort, "sort", "", "sort field: surname|email|balance")
	cmd.Flags().StringVar(&q.order, "order", "", "asc or desc")
}

// view wraps repo in a filter decorator when any criteria were given
func (q *queryFlags) view(repo repository.Repository) (repository.Repository, error) {
	values := url.Values{}
	for name, v := range map[string]string{
		filter.ParamSurname:    q.surname,
		filter.ParamMinBalance: q.minBalance,
		filter.ParamMaxBalance: q.maxBalance,
		filter.ParamHasEmail:   q.hasEmail,
		filter.ParamSort:       q.sort,
		filter.ParamOrder:      q.order,
	} {
		if v != "" {
			values.Set(name, v)
		}
	}

	crit, err := filter.ParseQuery(values)
	if err != nil {
		return nil, err
	}
	if crit.IsEmpty() {
		return repo, nil
	}
	return crit.Apply(filter.New(repo)), nil
}

// clientFlags collect the fields of add and update
type clientFlags struct {
	req     handler.ClientRequest
	balance string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.Surname, "surname", "", "surname (required)")
	cmd.Flags().StringVar(&f.req.Firstname, "firstname", "", "first name (required)")
	cmd.Flags().StringVar(&f.req.FathersName, "fathers-name", "", "patronymic")
	cmd.Flags().StringVar(&f.req.BirthDate, "birth-date", "", "birth date as DD.MM.YYYY")
	cmd.Flags().StringVar(&f.req.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.req.Passport, "passport", "", "passport number")
	cmd.Flags().StringVar(&f.req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.balance, "balance", "", "account balance")
}

func (f *clientFlags) client() (domain.Client, error) {
	req := f.req
	if f.balance != "" {
		v, err := strconv.ParseFloat(f.balance, 64)
		if err != nil {
			return domain.Client{}, fmt.Errorf("invalid balance %q", f.balance)
		}
		req.Balance = &v
	}
	return req.ToClient()
}

func newListCmd(c *cli) *cobra.Command {
	var (
		q          queryFlags
		page, size int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			view, err := q.view(backend.Repo)
			if err != nil {
				return err
			}

			var infos []domain.ShortInfo
			if page > 0 || size > 0 {
				if page <= 0 {
					page = 1
				}
				if size <= 0 {
					size = 20
				}
				infos, err = view.GetPage(ctx, page, size)
			} else {
				var clients []domain.Client
				clients, err = view.ReadAll(ctx)
				for _, cl := range clients {
					infos = append(infos, cl.Short())
				}
			}
			if err != nil {
				return err
			}

			rows := make([]handler.ShortDTO, 0, len(infos))
			for _, s := range infos {
				rows = append(rows, handler.ShortView(s))
			}
			return c.print(cmd.OutOrStdout(), rows, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSURNAME\tFIRSTNAME\tBIRTH DATE\tEMAIL")
				for _, s := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						s.ID, s.Surname, s.Firstname, domain.FormatBirthDate(s.BirthDate), s.Email)
				}
				tw.Flush()
			})
		},
	}

	q.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}

			backend, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			cl, err := backend.Repo.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if cl == nil {
				return fmt.Errorf("client %s not found", id)
			}
			return c.printClient(cmd.OutOrStdout(), *cl)
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var f clientFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := f.client()
			if err != nil {
				return err
			}

			backend, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			created, err := backend.Repo.Add(cmd.Context(), cl)
			if err != nil {
				return err
			}
			return c.printClient(cmd.OutOrStdout(), *created)
		},
	}

	f.register(cmd)
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var f clientFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace every field of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			cl, err := f.client()
			if err != nil {
				return err
			}

			backend, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			ok, err := backend.Repo.ReplaceByID(cmd.Context(), id, cl)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("client %s not found", id)
			}
			cl.ID = id
			return c.printClient(cmd.OutOrStdout(), cl)
		},
	}

	f.register(cmd)
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}

			backend, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			ok, err := backend.Repo.DeleteByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("client %s not found", id)
			}
			return c.print(cmd.OutOrStdout(), map[string]domain.ID{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted client %s\n", id)
			})
		},
	}
}

func newCountCmd(c *cli) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			view, err := q.view(backend.Repo)
			if err != nil {
				return err
			}
			n, err := view.Count(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), map[string]int{"count": n}, func(w io.Writer) {
				fmt.Fprintln(w, n)
			})
		},
	}

	q.register(cmd)
	return cmd
}

func newSortCmd(c *cli) *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort clients by the backend's primary field",
		Long: "Sort clients by the backend's primary field. File backends rewrite the file in the new order.\n" +
			"Database backends only sort the view of this process, so the command prints the sorted list.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			ordering, err := backend.Repo.SortByPrimaryField(ctx, reverse)
			if errors.Is(err, repository.ErrSortUnsupported) {
				return fmt.Errorf("backend %s cannot sort: %w", c.cfg.Backend, err)
			}
			if err != nil {
				return err
			}

			clients, err := backend.Repo.ReadAll(ctx)
			if err != nil {
				return err
			}
			rows := make([]handler.ClientDTO, 0, len(clients))
			for _, cl := range clients {
				rows = append(rows, handler.ClientView(cl))
			}
			return c.print(cmd.OutOrStdout(), map[string]any{"ordering": ordering, "clients": rows}, func(w io.Writer) {
				fmt.Fprintf(w, "ordering: %s\n", ordering)
				for _, cl := range clients {
					fmt.Fprintln(w, cl.String())
				}
			})
		},
	}

	cmd.Flags().BoolVar(&reverse, "reverse", false, "descending order")
	return cmd
}

func (c *cli) printClient(w io.Writer, cl domain.Client) error {
	return c.print(w, handler.ClientView(cl), func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", cl.ID)
		fmt.Fprintf(tw, "Name\t%s\n", cl.FullName())
		fmt.Fprintf(tw, "Birth date\t%s\n", domain.FormatBirthDate(cl.BirthDate))
		fmt.Fprintf(tw, "Phone\t%s\n", cl.PhoneNumber)
		fmt.Fprintf(tw, "Passport\t%s\n", cl.Passport)
		fmt.Fprintf(tw, "Email\t%s\n", cl.Email)
		if cl.Balance != nil {
			fmt.Fprintf(tw, "Balance\t%.2f\n", *cl.Balance)
		} else {
			fmt.Fprintf(tw, "Balance\t\n")
		}
		tw.Flush()
	})
}

// print writes v as indented JSON, or calls text for text output
func (c *cli) print(w io.Writer, v any, text func(io.Writer)) error {
	if c.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
