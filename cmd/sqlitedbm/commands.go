package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/andreyvit/sqlitedbm"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
)

// run closes the store when f fails, since cobra skips post-run hooks then.
func (a *app) run(f func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := f(cmd, args)
		if err != nil {
			a.close(cmd, args)
		}
		return err
	}
}

func (a *app) commands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "get [key]",
			Short: "Print the value stored under a key",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				v, err := a.m.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}),
		},
		{
			Use:   "set [key] [value]",
			Short: "Store a value under a key",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.m.Set(args[0], args[1])
			}),
		},
		{
			Use:     "del [key]",
			Aliases: []string{"delete"},
			Short:   "Delete a key",
			Args:    cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.m.Delete(args[0])
			}),
		},
		{
			Use:   "has [key]",
			Short: "Print whether a key is present",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				found, err := a.m.Has(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), found)
				return nil
			}),
		},
		{
			Use:   "len",
			Short: "Print the number of entries",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				n, err := a.m.Len()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}),
		},
		{
			Use:   "keys",
			Short: "Print all keys, sorted",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				keys, err := a.m.AllKeys()
				if err != nil {
					return err
				}
				slices.Sort(keys)
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}),
		},
		{
			Use:   "items",
			Short: "Print all entries as key<TAB>value, sorted by key",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				items, err := a.m.AllItems()
				if err != nil {
					return err
				}
				slices.SortFunc(items, func(x, y sqlitedbm.Item) int { return strings.Compare(x.Key, y.Key) })
				for _, item := range items {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.Key, item.Value)
				}
				return nil
			}),
		},
		{
			Use:   "clear",
			Short: "Delete every entry",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.m.Clear()
			}),
		},
		{
			Use:   "pop [key] [default]",
			Short: "Delete a key and print its value",
			Args:  cobra.RangeArgs(1, 2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				def := sqlitedbm.None[string]()
				if len(args) > 1 {
					def = sqlitedbm.Some(args[1])
				}
				v, err := a.m.Pop(args[0], def)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}),
		},
		a.getManyCmd(),
		{
			Use:   "select [key...]",
			Short: "Print values for several keys, failing if any is missing",
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				values, err := a.m.Select(args...)
				if err != nil {
					return err
				}
				for _, v := range values {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}
				return nil
			}),
		},
		{
			Use:   "update [key=value...]",
			Short: "Store several pairs in one transaction",
			Long: `Store several pairs in one transaction. Pairs are taken from the
arguments, or read from standard input as key<TAB>value lines when
no arguments are given.`,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				var items []sqlitedbm.Item
				if len(args) > 0 {
					for _, arg := range args {
						k, v, ok := strings.Cut(arg, "=")
						if !ok {
							return fmt.Errorf("invalid pair %q, wanted key=value", arg)
						}
						items = append(items, sqlitedbm.Item{Key: k, Value: v})
					}
				} else {
					sc := bufio.NewScanner(cmd.InOrStdin())
					for sc.Scan() {
						line := sc.Text()
						if line == "" {
							continue
						}
						k, v, ok := strings.Cut(line, "\t")
						if !ok {
							return fmt.Errorf("invalid line %q, wanted key<TAB>value", line)
						}
						items = append(items, sqlitedbm.Item{Key: k, Value: v})
					}
					if err := sc.Err(); err != nil {
						return err
					}
				}
				err := a.m.Update(sqlitedbm.Pairs(items...))
				if err != nil {
					return err
				}
				a.log.Info().Int("pairs", len(items)).Msg("updated")
				return nil
			}),
		},
		{
			Use:         "maps",
			Short:       "List the maps stored in the file",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{"open": openContainer},
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				names, err := a.c.MapNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}),
		},
		{
			Use:         "drop-map [name]",
			Short:       "Delete a map and all its entries",
			Args:        cobra.ExactArgs(1),
			Annotations: map[string]string{"open": openContainer},
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.c.DropMap(args[0])
			}),
		},
		{
			Use:   "stats",
			Short: "Print row count and file statistics",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				s, err := a.m.Stats()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "rows\t%d\n", s.Rows)
				fmt.Fprintf(w, "page_size\t%d\n", s.PageSize)
				fmt.Fprintf(w, "page_count\t%d\n", s.PageCount)
				fmt.Fprintf(w, "freelist_count\t%d\n", s.FreelistCount)
				fmt.Fprintf(w, "file_size\t%d\n", s.FileSize())
				return nil
			}),
		},
		{
			Use:   "dump",
			Short: "Print a human-readable listing of the map",
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				return a.m.Dump(cmd.OutOrStdout(), sqlitedbm.DumpAll)
			}),
		},
		{
			Use:   "import-bolt [bolt-file] [bucket]",
			Short: "Copy a Bolt bucket into the map",
			Long: `Copy every pair of a Bolt bucket into the map in one transaction.
Nested buckets are addressed as root/sub.`,
			Args: cobra.ExactArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				bdb, err := bbolt.Open(args[0], 0o600, &bbolt.Options{ReadOnly: true})
				if err != nil {
					return err
				}
				defer bdb.Close()
				n, err := sqlitedbm.ImportBolt(a.m, bdb, args[1])
				if err != nil {
					return err
				}
				a.log.Info().Int("pairs", n).Str("bucket", args[1]).Msg("imported")
				return nil
			}),
		},
	}
}

func (a *app) getManyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "getmany [key...]",
		Short: "Print values for several keys, one per line",
	}
	def := cmd.Flags().String("default", "", "value printed for missing keys")
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		values, err := a.m.GetMany(args, *def)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	})
	return cmd
}
