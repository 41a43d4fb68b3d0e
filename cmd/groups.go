package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/noflood"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/store"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Inspect stored group configurations",
}

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsShowCmd)
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured groups",
	RunE: func(_ *cobra.Command, _ []string) error {
		table, lockTTL, err := loadGroups()
		if err != nil {
			return err
		}
		if len(table) == 0 {
			fmt.Println("No configured groups.")
			return nil
		}

		gids := make([]int64, 0, len(table))
		for gid := range table {
			gids = append(gids, gid)
		}
		sort.Slice(gids, func(i, k int) bool { return gids[i] < gids[k] })

		fmt.Printf("%-16s %-8s %-6s %-6s %-7s %-6s %s\n", "Group", "Default", "Limit", "Time", "Delete", "Purge", "Lock")
		for _, gid := range gids {
			r := table[gid]
			fmt.Printf("%-16d %-8s %-6d %-6d %-7s %-6s %s\n",
				gid, onOff(r.Default), r.Limit, r.Time, onOff(r.Delete), onOff(r.Purge), lockState(r, lockTTL))
		}
		return nil
	},
}

var groupsShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show one group's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		gid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid group id %q", args[0])
		}
		table, lockTTL, err := loadGroups()
		if err != nil {
			return err
		}
		r, ok := table[gid]
		if !ok {
			fmt.Printf("Group %d has no stored configuration; defaults apply.\n\n", gid)
			r = noflood.DefaultRecord()
		}
		printHeader(fmt.Sprintf("Group %d", gid))
		fmt.Print(r.Text())
		fmt.Printf("Lock: %s\n", lockState(r, lockTTL))
		return nil
	},
}

func loadGroups() (map[int64]noflood.Record, time.Duration, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	db, err := store.OpenSQLite(cfg.Store.StorePath())
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()
	table, err := db.LoadAll(context.Background())
	return table, cfg.Noflood.LockTTL, err
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func lockState(r noflood.Record, ttl time.Duration) string {
	now := time.Now()
	if noflood.Unlocked(r, now, ttl) {
		return color.GreenString("free")
	}
	until := time.Unix(r.Lock, 0).Add(ttl)
	return color.YellowString("locked until %s", until.Format("15:04:05"))
}
