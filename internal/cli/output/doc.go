// Package output renders CLI results as a table, JSON or YAML.
//
// Types that know their own columns implement Tabular; anything else is
// shown as a FIELD/VALUE table or, for shapes a table cannot express,
// as JSON.
package output
