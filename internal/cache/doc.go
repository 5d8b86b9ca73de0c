// Package cache persists slow-to-fetch facts between wts invocations.
//
// Only CI status and the detected default branch are persisted; everything
// derived from the local object database is cheap to recompute. Each
// repository gets one JSON file in the wts cache directory, named after a
// hash of its shared git directory so that all of its worktrees share
// one cache:
//
//	{
//	  "version": 1,
//	  "entries": {
//	    "ci:feature@3f2a9c1...": {
//	      "value": {"status": "passed", "source": "pull_request"},
//	      "fetched_at": "2026-01-02T15:04:05Z"
//	    },
//	    "default-branch:": {
//	      "value": "main",
//	      "fetched_at": "2026-01-02T15:04:05Z"
//	    }
//	  }
//	}
//
// [File] implements the backing interface of the fact store: entries are
// read once when a listing starts and written back with [File.Flush] when
// it ends.
//
// # Concurrency
//
// Two listings may run at the same time. Flush takes an exclusive flock on
// a sibling .lock file, re-reads the file, and merges this process's
// changes on top, so neither process drops the other's entries.
//
// # Related Commands
//
// "wts cache show" lists entries; "wts cache clear" removes them.
package cache
