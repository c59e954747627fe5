package database

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
)

// MaxDeclarationVersion is the newest supported declaration format version.
const MaxDeclarationVersion = 2

// DeclarationExtension is a file extension of database declarations.
const DeclarationExtension = ".adb"

const (
	keywordVersion      = "version"
	keywordDependencies = "dependencies"
)

// Dependency is a single dependency line of the declaration.
type Dependency struct {
	Index uint32
	// Path as written in the declaration, relative to the declaring file
	// directory. May use '\' separators.
	Path string
}

// Declaration is a parsed database declaration file.
type Declaration struct {
	Version      uint32
	Dependencies []Dependency
}

// ParseDeclaration parses line-oriented declaration:
//
//	version <N>
//	dependencies <M>
//	<index> <path>
//	... (exactly M lines)
//
// Blank lines are ignored anywhere. Keywords are case-sensitive. version
// must go first, the dependencies section is optional.
func ParseDeclaration(r io.Reader) (Declaration, error) {
	var (
		d           Declaration
		sc          = bufio.NewScanner(r)
		line        int
		haveVersion bool
		haveDeps    bool
		declared    uint64
	)

	for sc.Scan() {
		line++

		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}

		if haveDeps && uint64(len(d.Dependencies)) < declared {
			dep, err := parseDependency(s)
			if err != nil {
				return Declaration{}, fmt.Errorf("line %d: %w", line, err)
			}

			d.Dependencies = append(d.Dependencies, dep)

			continue
		}

		key, arg, _ := cutSpace(s)

		switch key {
		case keywordVersion:
			if haveVersion {
				return Declaration{}, common.Formatf("line %d: repeated version", line)
			}

			v, err := parseCount(arg)
			if err != nil {
				return Declaration{}, common.Formatf("line %d: version: %v", line, err)
			}

			if v == 0 {
				return Declaration{}, common.Formatf("line %d: zero version", line)
			}

			if v > MaxDeclarationVersion {
				return Declaration{}, common.Unsupportedf("declaration version %d, max %d", v, MaxDeclarationVersion)
			}

			d.Version = uint32(v)
			haveVersion = true
		case keywordDependencies:
			if !haveVersion {
				return Declaration{}, common.Formatf("line %d: dependencies before version", line)
			}

			if haveDeps {
				return Declaration{}, common.Formatf("line %d: repeated dependencies", line)
			}

			n, err := parseCount(arg)
			if err != nil {
				return Declaration{}, common.Formatf("line %d: dependency count: %v", line, err)
			}

			declared = n
			haveDeps = true
		default:
			if haveDeps {
				if _, err := parseDependency(s); err == nil {
					return Declaration{}, common.Formatf("line %d: more than %d declared dependencies", line, declared)
				}
			}

			return Declaration{}, common.Formatf("line %d: unexpected line %q", line, s)
		}
	}

	if err := sc.Err(); err != nil {
		return Declaration{}, fmt.Errorf("read declaration: %w", err)
	}

	if !haveVersion {
		return Declaration{}, common.Formatf("missing version")
	}

	if uint64(len(d.Dependencies)) != declared {
		return Declaration{}, common.Formatf("declared %d dependencies, found %d", declared, len(d.Dependencies))
	}

	return d, nil
}

// cutSpace splits s around the first run of blanks.
func cutSpace(s string) (before, after string, found bool) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}

	return s[:i], strings.TrimSpace(s[i:]), true
}

func parseCount(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}

	return strconv.ParseUint(s, 10, 32)
}

func parseDependency(s string) (Dependency, error) {
	idx, p, ok := cutSpace(s)
	if !ok || p == "" {
		return Dependency{}, common.Formatf("dependency line %q is not '<index> <path>'", s)
	}

	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return Dependency{}, common.Formatf("dependency index %q: %v", idx, err)
	}

	if i == 0 {
		return Dependency{}, common.Formatf("dependency index 0 is reserved")
	}

	return Dependency{Index: uint32(i), Path: p}, nil
}
