// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

package scanservice

import (
	"encoding/json"
	"os"

	"github.com/clamguard/backend/internal/task"
)

// firstExistingTarget returns a Target for the first path in paths that
// exists on disk. Multi-path fan-out beyond the first is a documented
// limitation (see DESIGN.md) — remaining paths are not queued here.
func firstExistingTarget(paths []string) (task.Target, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		return task.NewTargetFromPath(p, info.IsDir()), nil
	}
	return task.Target{}, ErrNoPathExists
}

func marshalPaths(paths []string) (string, error) {
	b, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
