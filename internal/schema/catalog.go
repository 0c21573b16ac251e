package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

func pk(name string) xmlload.ColumnSpec {
	return xmlload.ColumnSpec{Name: name, Type: xmlload.ColumnInteger, PrimaryKey: true}
}

func integer(name string) xmlload.ColumnSpec {
	return xmlload.ColumnSpec{Name: name, Type: xmlload.ColumnInteger}
}

func text(name string) xmlload.ColumnSpec {
	return xmlload.ColumnSpec{Name: name, Type: xmlload.ColumnText}
}

// builtin is ordered; a full load processes tables in this order.
var builtin = []xmlload.TableDefinition{
	{
		Name:   "comments",
		Source: "Comments.xml",
		Columns: []xmlload.ColumnSpec{
			pk("Id"),
			integer("PostId"),
			integer("Score"),
			text("Text"),
			text("CreationDate"),
			integer("UserId"),
		},
	},
	{
		Name:   "posts",
		Source: "Posts.xml",
		Columns: []xmlload.ColumnSpec{
			pk("Id"),
			integer("PostTypeId"),
			integer("AcceptedAnswerId"),
			text("CreationDate"),
			integer("Score"),
			integer("ViewCount"),
			text("Body"),
			integer("OwnerUserId"),
			text("OwnerDisplayName"),
			integer("LastEditorUserId"),
			text("LastEditorDisplayName"),
			text("LastEditDate"),
			text("LastActivityDate"),
			text("Title"),
			text("Tags"),
			integer("AnswerCount"),
			integer("CommentCount"),
			integer("FavoriteCount"),
			text("ContentLicense"),
		},
	},
	{
		Name:   "tags",
		Source: "Tags.xml",
		Columns: []xmlload.ColumnSpec{
			pk("Id"),
			text("TagName"),
			integer("Count"),
			integer("ExcerptPostId"),
			integer("WikiPostId"),
		},
	},
	{
		Name:   "users",
		Source: "Users.xml",
		Columns: []xmlload.ColumnSpec{
			pk("Id"),
			integer("Reputation"),
			text("CreationDate"),
			text("DisplayName"),
			text("LastAccessDate"),
			text("AboutMe"),
			integer("Views"),
			integer("UpVotes"),
			integer("DownVotes"),
		},
	},
	{
		Name:   "votes",
		Source: "Votes.xml",
		Columns: []xmlload.ColumnSpec{
			pk("Id"),
			integer("PostId"),
			integer("VoteTypeId"),
			text("CreationDate"),
		},
	},
}

// Builtin returns a copy of the built-in catalog.
// Callers may modify the result freely.
func Builtin() []xmlload.TableDefinition {
	out := make([]xmlload.TableDefinition, len(builtin))
	for i, def := range builtin {
		out[i] = clone(def)
	}
	return out
}

func clone(def xmlload.TableDefinition) xmlload.TableDefinition {
	cols := make([]xmlload.ColumnSpec, len(def.Columns))
	copy(cols, def.Columns)
	def.Columns = cols
	return def
}

// Lookup finds a definition by name, ignoring case.
func Lookup(catalog []xmlload.TableDefinition, name string) (xmlload.TableDefinition, error) {
	for _, def := range catalog {
		if strings.EqualFold(def.Name, name) {
			return def, nil
		}
	}
	return xmlload.TableDefinition{}, fmt.Errorf("%w: %q (available: %s)", xmlload.ErrUnknownTable, name, strings.Join(Names(catalog), ", "))
}

// Select returns the definitions for names in the order given.
// An empty names slice selects the whole catalog.
func Select(catalog []xmlload.TableDefinition, names []string) ([]xmlload.TableDefinition, error) {
	if len(names) == 0 {
		return catalog, nil
	}

	selected := make([]xmlload.TableDefinition, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		def, err := Lookup(catalog, name)
		if err != nil {
			return nil, err
		}
		if seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		selected = append(selected, def)
	}
	return selected, nil
}

// Names returns the table names of the catalog in order.
func Names(catalog []xmlload.TableDefinition) []string {
	names := make([]string, len(catalog))
	for i, def := range catalog {
		names[i] = def.Name
	}
	return names
}

// Merge validates extra and combines it with base. A definition in extra
// replaces the base definition with the same name (case-insensitive) in place;
// new names are appended in the order given.
func Merge(base, extra []xmlload.TableDefinition) ([]xmlload.TableDefinition, error) {
	var errs []error
	for _, def := range extra {
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	merged := make([]xmlload.TableDefinition, len(base))
	copy(merged, base)

	for _, def := range extra {
		replaced := false
		for i := range merged {
			if strings.EqualFold(merged[i].Name, def.Name) {
				merged[i] = clone(def)
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, clone(def))
		}
	}

	return merged, nil
}

// SourceOverrides checks a table-to-file map against the catalog and returns
// it keyed by the catalog's table names. Keys match tables ignoring case; a
// key naming no table, or two keys naming the same table, is an error.
func SourceOverrides(catalog []xmlload.TableDefinition, files map[string]string) (map[string]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(files))
	for key := range files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	out := make(map[string]string, len(files))
	for _, key := range keys {
		def, err := Lookup(catalog, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("files entry %q names no table (available: %s): %w", key, strings.Join(Names(catalog), ", "), xmlload.ErrInvalidConfig))
			continue
		}
		if _, dup := out[def.Name]; dup {
			errs = append(errs, fmt.Errorf("files lists table %q more than once: %w", def.Name, xmlload.ErrInvalidConfig))
			continue
		}
		out[def.Name] = files[key]
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
