// Package backup provides config file backup and restore for plugup.
//
// Before plugup rewrites a host config file, it snapshots the file so the
// change can be rolled back. Each backup is one timestamped directory
// containing the copied file and a manifest with its SHA256 hash, mode, and
// original path:
//
//	$XDG_CONFIG_HOME/plugup/backups/
//	└── {timestamp}/
//	    ├── manifest.json
//	    └── {copied file...}
//
// # Creating Backups
//
// Use [Manager.Backup] to snapshot a config file:
//
//	mgr := backup.NewManager()
//	manifest, err := mgr.Backup("~/.config/opencode/opencode.json")
//
// Automatic pre-write backups go through [EnsureBackedUp], which creates at
// most one backup per file per session.
//
// # Restoring Backups
//
// Use [Manager.Restore] to write a backup back to its original location:
//
//	err := mgr.Restore("20260123T100712", false)
//
// The stored copy is verified against its checksum first; a mismatch returns
// [ErrBackupCorrupted]. If the target file changed since the backup was
// taken, the restore returns [ErrRestoreConflict] unless forced, so hand
// edits are never silently overwritten.
//
// # Retention
//
// [Manager.Prune] removes old backups beyond the retention count, keeping
// the most recent backups of each config file:
//
//	err := mgr.Prune(5)
//
// The default retention count is 5 backups per file.
package backup
