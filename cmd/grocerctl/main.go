// Command grocerctl talks to a running grocer server over its /rpc surface.
//
//	grocerctl [-addr URL] categories
//	grocerctl [-addr URL] items
//	grocerctl [-addr URL] add|remove|toggle ID
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dukerupert/grocer/internal/rpc"
)

func main() {
	addr := flag.String("addr", envOr("GROCER_ADDR", "http://localhost:8080"), "grocer server base URL")
	flag.Usage = usage
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := run(ctx, rpc.NewClient(*addr), flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "grocerctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: grocerctl [-addr URL] categories | items | add ID | remove ID | toggle ID")
	flag.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, c *rpc.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "categories":
		cats, err := c.GetCategories(ctx)
		if err != nil {
			return err
		}
		for _, cat := range cats {
			fmt.Fprintln(out, cat.Name)
			for _, it := range cat.Items {
				fmt.Fprintf(out, "  %4d %s %s\n", it.ID, it.Emoji, it.Name)
			}
		}
		return nil

	case "items":
		items, err := c.GetCartItems(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			mark := " "
			if it.Completed {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] %4d %s %s\n", mark, it.ID, it.Emoji, it.Name)
		}
		return nil

	case "add", "remove", "toggle":
		if len(args) != 2 {
			return fmt.Errorf("%s: expected exactly one item id", args[0])
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid item id %q", args[0], args[1])
		}

		var res rpc.Result
		switch args[0] {
		case "add":
			res, err = c.AddToCart(ctx, id)
		case "remove":
			res, err = c.RemoveFromCart(ctx, id)
		default:
			res, err = c.ToggleItemCompletion(ctx, id)
		}
		if err != nil {
			return err
		}
		if reason, failed := res.Reason(); failed {
			return fmt.Errorf("%s %d: %s", args[0], id, reason)
		}
		fmt.Fprintln(out, "ok")
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
