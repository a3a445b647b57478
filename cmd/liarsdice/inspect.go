package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lox/liarsdice/sdk/solver"
)

// InspectCmd summarises a policy store, optionally dumping one configuration.
type InspectCmd struct {
	Store string `help:"Policy store path (defaults to the configured store)"`
	Dice  string `help:"Dump the policy for these dice counts, e.g. 1,2"`
	Limit int    `default:"20" help:"Maximum info sets to print when dumping"`
}

func (c *InspectCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	path := cfg.Training.PolicyStore
	if c.Store != "" {
		path = c.Store
	}

	store, size, err := loadStoreInfo(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s: %d configs, %s\n", path, store.Len(), humanize.Bytes(uint64(size)))
	writeStoreSummary(os.Stdout, store)

	if c.Dice == "" {
		return nil
	}
	counts, err := parseCounts(c.Dice)
	if err != nil {
		return err
	}
	policy, ok := store.Lookup(counts, cfg.Rules.Faces)
	if !ok {
		return fmt.Errorf("%w: dice %v faces %v", solver.ErrUntrainedPolicy, counts, cfg.Rules.Faces)
	}
	fmt.Fprintln(os.Stdout)
	writePolicy(os.Stdout, policy, c.Limit)
	return nil
}

// loadStoreInfo loads the store at path along with its size on disk. Only a
// missing file reports ErrUntrainedPolicy.
func loadStoreInfo(path string) (*solver.PolicyStore, int64, error) {
	store, err := solver.LoadStore(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	return store, info.Size(), nil
}

func writeStoreSummary(w io.Writer, store *solver.PolicyStore) {
	for _, key := range store.Keys() {
		p, _ := store.Get(key)
		fmt.Fprintf(w, "  %-32s %8s infosets\n", key, humanize.Comma(int64(len(p))))
	}
}

// writePolicy prints up to limit info sets with their action probabilities.
func writePolicy(w io.Writer, policy solver.Policy, limit int) {
	keys := policy.Keys()
	for i, key := range keys {
		if limit > 0 && i == limit {
			fmt.Fprintf(w, "  ... %d more\n", len(keys)-limit)
			return
		}
		dist := policy[key]
		parts := make([]string, 0, len(dist))
		for _, a := range dist.Actions() {
			parts = append(parts, fmt.Sprintf("%s=%.3f", a, dist[a]))
		}
		fmt.Fprintf(w, "  %-24s %s\n", key, strings.Join(parts, " "))
	}
}

func parseCounts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return nil, fmt.Errorf("dice counts must name 2 players, got %q", s)
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid dice count %q", f)
		}
		out[i] = n
	}
	return out, nil
}
