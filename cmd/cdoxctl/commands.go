package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cdox/internal/app"
	"cdox/internal/config"
	"cdox/internal/filter"
	"cdox/internal/model"
	"cdox/internal/repository"
	"cdox/internal/view"
)

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runMigrations(cmd.Context(), c.cfg, c.log); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "schema is up to date")
			return nil
		},
	}
}

type listFlags struct {
	types    string
	year     string
	order    string
	showDate bool
	layout   string
}

func (f *listFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.types, "type", "", "comma separated type slugs")
	fs.StringVar(&f.year, "year", "", "publication year or "+filter.AllYears)
	fs.StringVar(&f.order, "order", string(model.OrderDesc), "ASC or DESC")
	fs.BoolVar(&f.showDate, "show-date", false, "include the formatted publication date")
	fs.StringVar(&f.layout, "date-layout", "", "Go time layout, defaults to CATALOG_DATE_LAYOUT")
}

func (c *cli) listCommand() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := filter.Parse(filter.Params{Types: f.types, Year: f.year, Order: f.order})
			layout := f.layout
			if layout == "" {
				layout = c.cfg.Catalog.DateLayout
			}
			return c.withService(cmd.Context(), func(d *app.Deps) error {
				res, err := d.Service.FilterDocuments(cmd.Context(), req.Spec)
				if err != nil {
					return err
				}
				for _, s := range res.Skipped {
					c.log.Warn("entry skipped", "id", s.ID, "reason", s.Reason)
				}
				return c.printJSON(view.BuildList(res.Documents, view.Options{ShowDate: f.showDate, DateLayout: layout}))
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (c *cli) yearsCommand() *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "years",
		Short: "Show publication years with document counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(d *app.Deps) error {
				years, err := d.Service.GetDocumentYears(cmd.Context(), model.NormalizeOrder(order, model.OrderDesc))
				if err != nil {
					return err
				}
				return c.printJSON(view.BuildYears(years))
			})
		},
	}
	cmd.Flags().StringVar(&order, "order", string(model.OrderDesc), "ASC or DESC")
	return cmd
}

func (c *cli) typesCommand() *cobra.Command {
	var (
		hideEmpty bool
		orderBy   string
		order     string
		slugs     string
	)
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Show document types with usage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ob := repository.TypeOrderBy(orderBy)
			switch ob {
			case repository.TypeOrderByName, repository.TypeOrderBySlug, repository.TypeOrderByCount:
			default:
				return fmt.Errorf("--orderby must be name, slug or count, got %q", orderBy)
			}
			q := repository.TypeQuery{
				HideEmpty: hideEmpty,
				OrderBy:   ob,
				Order:     model.NormalizeOrder(order, model.OrderAsc),
				Slugs:     filter.ParseTypeList(slugs),
			}
			return c.withService(cmd.Context(), func(d *app.Deps) error {
				types, err := d.Service.GetDocumentTypes(cmd.Context(), q)
				if err != nil {
					return err
				}
				return c.printJSON(view.BuildTypes(types))
			})
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&hideEmpty, "hide-empty", false, "drop types without published documents")
	fs.StringVar(&orderBy, "orderby", string(repository.TypeOrderByName), "name, slug or count")
	fs.StringVar(&order, "order", string(model.OrderAsc), "ASC or DESC")
	fs.StringVar(&slugs, "type", "", "comma separated slugs to restrict to")
	return cmd
}

func (c *cli) cacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Invalidate every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Cache.Backend == config.CacheMemory {
				c.log.Warn("memory cache is per process, flushing has no effect on running servers")
			}
			return c.withService(cmd.Context(), func(d *app.Deps) error {
				if err := d.Service.InvalidateAll(cmd.Context()); err != nil {
					return err
				}
				purged, err := d.PurgeExpired()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "cache invalidated, %d expired entries purged\n", purged)
				return nil
			})
		},
	})
	return cacheCmd
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
