package yamlvars

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	rootDir   string
	varsDir   string
	localFile string
}

type Option func(*Loader)

func WithVarsDir(dir string) Option {
	return func(l *Loader) { l.varsDir = dir }
}

func WithLocalFile(name string) Option {
	return func(l *Loader) { l.localFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:   root,
		varsDir:   "vars",
		localFile: "vars.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.VarSetLoader = (*Loader)(nil)
var _ ports.VarSetCatalog = (*Loader)(nil)

// LoadVarSet accepts either a set name (e.g., "dev") or a full path to a YAML file.
func (l *Loader) LoadVarSet(nameOrPath string) (domain.VarSet, error) {
	var setPath string
	var setName string

	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		setPath = filepath.Clean(nameOrPath)
		setName = strings.TrimSuffix(filepath.Base(setPath), filepath.Ext(setPath))
	} else {
		setName = nameOrPath
		setPath = filepath.Join(l.rootDir, l.varsDir, setName+".yaml")
	}

	base, err := readVars(setPath)
	if err != nil {
		return domain.VarSet{}, err
	}

	// Local overrides are optional and never committed; they win over base vars.
	localPath := filepath.Join(filepath.Dir(setPath), l.localFile)
	local, localErr := readVarsOptional(localPath)
	if localErr != nil {
		return domain.VarSet{}, localErr
	}

	return domain.VarSet{
		Name: setName,
		Vars: domain.MergeVars(base, local),
	}, nil
}

func (l *Loader) ListVarSets(root string) ([]domain.VarSetRef, error) {
	dir := filepath.Join(root, l.varsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlvars.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.VarSetRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == l.localFile {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		refs = append(refs, domain.VarSetRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type yamlVars struct {
	Vars map[string]string `yaml:"vars"`
}

func readVars(path string) (domain.Vars, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlvars.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlVars
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, &domain.OpError{
			Op:   "yamlvars.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if y.Vars == nil {
		y.Vars = map[string]string{}
	}
	return domain.Vars(y.Vars), nil
}

func readVarsOptional(path string) (domain.Vars, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.Vars{}, nil
		}
		return nil, &domain.OpError{
			Op:   "yamlvars.load",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return readVars(path)
}
