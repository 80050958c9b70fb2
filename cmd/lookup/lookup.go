package lookup

import (
	"context"
	"fmt"
	"net/http"
	"os"

	chordImpl "go.miragespace.co/chordring/chord"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/timing"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func viaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "via",
			Usage:    "advertise address of any member of the ring",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "space",
			Value: uint(chord.DefaultSpace),
			Usage: "number of bits in the identifier space of the ring",
		},
		&cli.UintFlag{
			Name:  "retries",
			Value: 3,
			Usage: "attempts per lookup on retryable errors",
		},
	}
}

func Generate() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "find the node responsible for each key",
		ArgsUsage: "KEY [KEY...]",
		Flags:     viaFlags(),
		Before: func(ctx *cli.Context) error {
			if ctx.NArg() == 0 {
				return fmt.Errorf("at least one key is required")
			}
			return checkSpace(ctx)
		},
		Action: cmdLookup,
	}
}

func checkSpace(ctx *cli.Context) error {
	if !chord.Space(ctx.Uint("space")).Valid() {
		return fmt.Errorf("identifier space must be between 1 and 64 bits, got %d", ctx.Uint("space"))
	}
	return nil
}

// connect discovers the node at the --via address and wraps it with retries
func connect(ctx *cli.Context) (chord.VNode, error) {
	logger, ok := ctx.App.Metadata["logger"].(*zap.Logger)
	if !ok || logger == nil {
		return nil, fmt.Errorf("unable to obtain logger from app context")
	}
	client := rpc.DynamicChordClient(&http.Client{})

	remote, err := chordImpl.NewRemoteNode(ctx.Context, logger, client, &protocol.Node{
		Address: ctx.String("via"),
		Unknown: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", ctx.String("via"), err)
	}
	return chord.WrapRetry(remote, timing.ChordJoinRetryInterval, ctx.Uint("retries")), nil
}

func cmdLookup(ctx *cli.Context) error {
	via, err := connect(ctx)
	if err != nil {
		return err
	}
	space := chord.Space(ctx.Uint("space"))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Key", "hash(Key)", "Owner", "Address"})

	failed := 0
	for _, key := range ctx.Args().Slice() {
		owner, err := lookupKey(ctx.Context, via, space, key)
		if err != nil {
			failed++
			t.AppendRow(table.Row{key, space.HashString(key), color.RedString("error"), color.RedString(err.Error())})
			continue
		}
		t.AppendRow(table.Row{key, space.HashString(key), owner.ID(), owner.Identity().GetAddress()})
	}
	t.SetStyle(table.StyleDefault)
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, ctx.NArg())
	}
	return nil
}

func lookupKey(ctx context.Context, via chord.VNode, space chord.Space, key string) (chord.VNode, error) {
	ctx, cancel := context.WithTimeout(ctx, timing.ChordRPCTimeout)
	defer cancel()
	return chord.Lookup(ctx, via, space, []byte(key))
}
