package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/tradeboard/internal/client"
	"github.com/HerbHall/tradeboard/internal/notify"
	"github.com/HerbHall/tradeboard/pkg/listquery"
	"github.com/HerbHall/tradeboard/pkg/models"
)

// view describes how one resource is listed in the terminal.
type view[T any] struct {
	path   string
	header string
	row    func(T) string
}

var productView = view[models.Product]{
	path:   "/api/v1/products",
	header: "NAME\tSKU\tSELLER\tCATEGORY\tSTATUS\tPRICE\tSTOCK",
	row: func(p models.Product) string {
		return strings.Join([]string{
			p.Name, p.SKU, p.SellerID, p.Category, string(p.Status),
			money(p.PriceCents, p.Currency), strconv.Itoa(p.Stock),
		}, "\t")
	},
}

var orderView = view[models.Order]{
	path:   "/api/v1/orders",
	header: "NUMBER\tBUYER\tSELLER\tSTATUS\tTOTAL\tITEMS\tCREATED",
	row: func(o models.Order) string {
		return strings.Join([]string{
			o.Number, o.BuyerID, o.SellerID, string(o.Status),
			money(o.TotalCents, o.Currency), strconv.Itoa(o.ItemCount), o.CreatedAt.Format("2006-01-02"),
		}, "\t")
	},
}

func money(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

const browseHelp = `commands: n next page, p previous page, g N go to page, /term search ("/" clears),
          f key=value filter ("f key=" clears), s key [asc|desc] sort, size N page size,
          r refetch, ? help, q quit`

func newBrowseCmd(a *app) *cobra.Command {
	var (
		qf          queryFlags
		interactive bool
	)
	cmd := &cobra.Command{
		Use:       "browse products|orders",
		Short:     "Page through a list from the API",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"products", "orders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := qf.partial()
			if err != nil {
				return err
			}
			s := &session{
				out:         cmd.OutOrStdout(),
				in:          cmd.InOrStdin(),
				interactive: interactive,
				logger:      a.logger.Named("browse"),
			}
			c := a.client()
			switch args[0] {
			case "products":
				return browse(cmd.Context(), s, client.Fetcher[models.Product](c, productView.path), productView, p)
			case "orders":
				return browse(cmd.Context(), s, client.Fetcher[models.Order](c, orderView.path), orderView, p)
			default:
				return fmt.Errorf("unknown list %q: want products or orders", args[0])
			}
		},
	}
	qf.register(cmd, listquery.DefaultPageSize)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read paging commands from stdin")
	return cmd
}

// session is the terminal a browse runs in.
type session struct {
	out         io.Writer
	in          io.Reader
	interactive bool
	logger      *zap.Logger
}

func browse[T any](ctx context.Context, s *session, fetch listquery.FetchFunc[T], v view[T], p listquery.Partial) error {
	ctrl := listquery.New(fetch,
		listquery.WithInitialQuery(p),
		listquery.WithContext(ctx),
		listquery.WithLogger(s.logger),
		listquery.WithNotifier(notify.Multi{notify.NewWriter(s.out), notify.NewLogger(s.logger)}),
	)
	defer ctrl.Close()

	ctrl.Wait()
	render(s.out, v, ctrl.State())
	if !s.interactive {
		return ctrl.State().Err
	}

	fmt.Fprintln(s.out, browseHelp)
	sc := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		quit, err := applyCommand(ctrl, sc.Text())
		if quit {
			return nil
		}
		if errors.Is(err, errHelp) {
			fmt.Fprintln(s.out, browseHelp)
			continue
		}
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		ctrl.Wait()
		render(s.out, v, ctrl.State())
	}
}

var errHelp = errors.New("help")

// applyCommand runs one interactive command against ctrl.
func applyCommand[T any](ctrl *listquery.Controller[T], line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		ctrl.SetSearch(strings.TrimSpace(line[1:]))
		return false, nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	st := ctrl.State()
	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "?", "h", "help":
		return false, errHelp
	case "n", "next":
		if st.Query.Page >= totalPages(st.TotalCount, st.Query.PageSize) {
			return false, errors.New("already on the last page")
		}
		ctrl.SetPage(st.Query.Page + 1)
	case "p", "prev":
		if st.Query.Page <= 1 {
			return false, errors.New("already on the first page")
		}
		ctrl.SetPage(st.Query.Page - 1)
	case "g", "page":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("page %q: want a number", rest)
		}
		ctrl.SetPage(n)
	case "size":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return false, fmt.Errorf("size %q: want a positive number", rest)
		}
		ctrl.SetPageSize(n)
	case "f", "filter":
		key, v, err := parseFilter(rest)
		if err != nil {
			return false, err
		}
		ctrl.SetFilter(key, v)
	case "s", "sort":
		s, err := parseSort(strings.Replace(rest, " ", ":", 1))
		if err != nil {
			return false, err
		}
		ctrl.SetSort(s.Key, s.Direction)
	case "r", "refresh":
		ctrl.Refetch()
	default:
		return false, fmt.Errorf("unknown command %q (? for help)", cmd)
	}
	return false, nil
}

func totalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func render[T any](w io.Writer, v view[T], st listquery.State[T]) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, v.header)
	for _, item := range st.Items {
		fmt.Fprintln(tw, v.row(item))
	}
	_ = tw.Flush()

	q := st.Query
	summary := fmt.Sprintf("Page %d of %d (%d results, %d per page, sort %s %s)",
		q.Page, totalPages(st.TotalCount, q.PageSize), st.TotalCount, q.PageSize, q.Sort.Key, q.Sort.Direction)
	if q.Search != "" {
		summary += fmt.Sprintf(" search %q", q.Search)
	}
	if pf := q.Filters.Pruned(); pf.Len() > 0 {
		b, _ := pf.MarshalJSON()
		summary += " filters " + string(b)
	}
	fmt.Fprintln(w, summary)
}
