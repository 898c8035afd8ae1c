package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"pocket-pos/internal/domain"
	"pocket-pos/internal/service"

	"github.com/urfave/cli/v2"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func productFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "product name"},
		&cli.StringFlag{Name: "price", Usage: "unit price, e.g. 2.50"},
		&cli.StringFlag{Name: "quantity", Aliases: []string{"qty"}, Usage: "units in stock"},
		&cli.StringFlag{Name: "category", Usage: "optional category"},
		&cli.StringFlag{Name: "details", Usage: "optional description"},
		&cli.StringFlag{Name: "image", Usage: "attach the image file at `PATH`"},
	}
}

// pickImage resolves --image into a file URI; an unreadable file leaves the product without one
func (s *session) pickImage(c *cli.Context) (*string, error) {
	return service.ResolveImage(c.Context, service.FilePicker{Path: c.String("image")}, s.logger)
}

func productsCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:    "products",
		Aliases: []string{"p"},
		Usage:   "list and edit the inventory",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list products sorted by name",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "only names containing `TEXT`"},
				},
				Action: func(c *cli.Context) error {
					products, err := s.inventory.ListProducts(c.Context, c.String("query"))
					if err != nil {
						return err
					}
					printProducts(c.App.Writer, products)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "add a product",
				Flags: productFlags(),
				Action: func(c *cli.Context) error {
					form := service.ProductForm{
						Name:     c.String("name"),
						Price:    c.String("price"),
						Quantity: c.String("quantity"),
						Category: c.String("category"),
						Details:  c.String("details"),
					}
					if c.IsSet("image") {
						image, err := s.pickImage(c)
						if err != nil {
							return err
						}
						form.Image = image
					}

					product, err := s.inventory.CreateProduct(c.Context, form)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "added %s (%s)\n", product.Name, product.ID)
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "show one product",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("show needs exactly one product id")
					}
					product, err := s.inventory.GetProduct(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					printProduct(c.App.Writer, product)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "change fields of a product; unset flags keep their value",
				ArgsUsage: "ID",
				Flags: append(productFlags(),
					&cli.BoolFlag{Name: "clear-image", Usage: "remove the product image"},
				),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("edit needs exactly one product id")
					}
					current, err := s.inventory.GetProduct(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					form := service.ProductForm{
						Name:     current.Name,
						Price:    current.Price.String(),
						Quantity: strconv.Itoa(current.Quantity),
						Category: current.Category,
						Details:  current.Details,
					}
					for flag, field := range map[string]*string{
						"name":     &form.Name,
						"price":    &form.Price,
						"quantity": &form.Quantity,
						"category": &form.Category,
						"details":  &form.Details,
					} {
						if c.IsSet(flag) {
							*field = c.String(flag)
						}
					}

					switch {
					case c.Bool("clear-image"):
						cleared := ""
						form.Image = &cleared
					case c.IsSet("image"):
						image, err := s.pickImage(c)
						if err != nil {
							return err
						}
						if image != nil {
							form.Image = image
						}
					}

					product, err := s.inventory.UpdateProduct(c.Context, current.ID, form)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "updated %s (%s)\n", product.Name, product.ID)
					return nil
				},
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "delete products",
				ArgsUsage: "ID...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("delete needs at least one product id")
					}
					for _, id := range c.Args().Slice() {
						if err := s.inventory.DeleteProduct(c.Context, id); err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
					}
					return nil
				},
			},
		},
	}
}

func sellCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:      "sell",
		Usage:     "sell one unit per product id; repeat an id to sell more",
		ArgsUsage: "ID...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "show the basket without recording the sale"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("sell needs at least one product id")
			}

			view := s.sales.OpenBasket()
			defer s.sales.AbandonBasket(view.ID)

			var err error
			for _, id := range c.Args().Slice() {
				if view, err = s.sales.AddToBasket(c.Context, view.ID, id); err != nil {
					return err
				}
			}
			printLines(c.App.Writer, view.Lines, view.Totals)

			if c.Bool("dry-run") {
				fmt.Fprintln(c.App.Writer, "dry run, nothing recorded")
				return nil
			}

			sale, err := s.sales.Sell(c.Context, view.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "sold %d items for %s (sale %s)\n",
				sale.Totals.Quantity, sale.Totals.Cost.StringFixed(2), sale.ID)
			return nil
		},
	}
}

func salesCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "sales",
		Usage: "inspect recorded sales",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list recorded sales, oldest first",
				Action: func(c *cli.Context) error {
					sales, err := s.sales.Sales(c.Context)
					if err != nil {
						return err
					}

					tw := table(c.App.Writer)
					fmt.Fprintln(tw, "ID\tSOLD AT\tITEMS\tTOTAL")
					for _, sale := range sales {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
							sale.ID, sale.SoldAt.Local().Format("2006-01-02 15:04"), sale.Totals.Quantity, sale.Totals.Cost.StringFixed(2))
					}
					return tw.Flush()
				},
			},
		},
	}
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity, p.Category)
	}
	tw.Flush()
}

func printProduct(w io.Writer, p *domain.Product) {
	image := "-"
	if p.HasImage() {
		image = *p.Image
	}

	tw := table(w)
	fmt.Fprintf(tw, "id\t%s\n", p.ID)
	fmt.Fprintf(tw, "name\t%s\n", p.Name)
	fmt.Fprintf(tw, "price\t%s\n", p.Price.StringFixed(2))
	fmt.Fprintf(tw, "quantity\t%d\n", p.Quantity)
	fmt.Fprintf(tw, "category\t%s\n", p.Category)
	fmt.Fprintf(tw, "details\t%s\n", p.Details)
	fmt.Fprintf(tw, "image\t%s\n", image)
	fmt.Fprintf(tw, "created\t%s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	tw.Flush()
}

func printLines(w io.Writer, lines []domain.SaleLine, totals domain.Totals) {
	tw := table(w)
	fmt.Fprintln(tw, "NAME\tPRICE\tQTY\tCOST")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", line.Name, line.Price.StringFixed(2), line.Quantity, line.Cost.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%s\n", totals.Quantity, totals.Cost.StringFixed(2))
	tw.Flush()
}
