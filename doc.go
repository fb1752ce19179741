// Package main provides the entry point for GoCrashStats-Admin, the
// administrative control panel of a crash-report aggregation service.
// It runs a web server using the Fiber framework with superuser-only
// screens for product and release metadata, featured versions, the
// processing skip list, user/group/permission administration, graphics
// device lookup tables and the SuperSearch field catalog. The crash data
// itself lives behind a remote data API; this panel only reads and writes
// through it.
package main
