// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mounts expands a "full scan" request into concrete filesystem
// mount points (C10), reading /proc/mounts and applying the allow/deny
// prefix and filesystem-type filters from the external interface contract.
package mounts

import (
	"bufio"
	"os"
	"sort"
	"strings"
)

var allowPrefixes = []string{"/", "/vol", "/data", "/mnt", "/home", "/root"}

var denyPrefixes = []string{"/proc", "/sys", "/dev", "/run", "/tmp", "/snap"}

var denySubstrings = []string{
	".zfs/snapshot",
	"/@appcenter/",
	"/rpc_pipefs",
	"/binfmt_misc",
	"/nfsd",
	"/fuse/connections",
	"/bpf",
	"/pstore",
	"/efivars",
}

var denyFsTypes = map[string]bool{
	"overlay":  true,
	"proc":     true,
	"sysfs":    true,
	"debugfs":  true,
	"tracefs":  true,
}

// mountEntry is one parsed /proc/mounts line.
type mountEntry struct {
	target string
	fsType string
}

// ExpandFullScan reads /proc/mounts and returns the deduplicated, sorted
// list of mount points eligible for a "full" scan. Falls back to {"/"} if
// nothing qualifies.
func ExpandFullScan() ([]string, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return expandFromReader(f)
}

func expandFromReader(f *os.File) ([]string, error) {
	var entries []mountEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, mountEntry{target: fields[1], fsType: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !eligible(e) {
			continue
		}
		if seen[e.target] {
			continue
		}
		seen[e.target] = true
		out = append(out, e.target)
	}

	sort.Strings(out)
	if len(out) == 0 {
		return []string{"/"}, nil
	}
	return out, nil
}

func eligible(e mountEntry) bool {
	if denyFsTypes[e.fsType] {
		return false
	}

	if !hasAnyPrefix(e.target, allowPrefixes) {
		return false
	}
	if hasAnyPrefix(e.target, denyPrefixes) {
		return false
	}
	for _, sub := range denySubstrings {
		if strings.Contains(e.target, sub) {
			return false
		}
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if s == p || strings.HasPrefix(s, strings.TrimSuffix(p, "/")+"/") || s == strings.TrimSuffix(p, "/") {
			return true
		}
	}
	return false
}
