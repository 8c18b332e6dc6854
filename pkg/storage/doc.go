// Package storage manages the output directory of the analyzer.
//
// The Manager type writes artifacts (the analytics report) atomically: data
// goes to a temporary file in the target directory which is then renamed
// over the final name. Existing JSON files are scanned on creation so
// callers can tell when a run is about to replace an earlier report.
//
// Usage:
//
//	manager, err := storage.NewManager("output")
//	if err != nil {
//	    return err
//	}
//
//	if manager.Exists("analytics_report.json") {
//	    log.Printf("replacing previous report")
//	}
//	path, err := manager.Save(reportReader, "analytics_report.json")
package storage
