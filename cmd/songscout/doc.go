// Command songscout scans long recordings for sung covers, matches each
// detected segment against a local song catalog, and reports the results as
// JSON or tables.
package main
