package graph

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/dag"
	"github.com/vk/catalogplan/internal/entity"
)

// CrossModuleDependencyError reports an assembly inside a module that
// depends on an assembly outside of it.
type CrossModuleDependencyError struct {
	From       string
	To         string
	FromModule string
	ToModule   string
}

func (e *CrossModuleDependencyError) Error() string {
	if e.ToModule == "" {
		return fmt.Sprintf("assembly '%s' in module '%s' cannot depend on assembly '%s', which has no module",
			e.From, e.FromModule, e.To)
	}
	return fmt.Sprintf("assembly '%s' in module '%s' cannot depend on assembly '%s' in module '%s'",
		e.From, e.FromModule, e.To, e.ToModule)
}

// Order sorts the modules of set, groups its assemblies by module and sorts
// the assemblies. On error both lists keep the order they had on entry.
func Order(ctx context.Context, set *entity.Set) (err error) {
	logger := ctxlog.FromContext(ctx)

	moduleSeq, assemblySeq := set.Modules.Sequence(), set.Assemblies.Sequence()
	defer func() {
		if err != nil {
			set.Modules.Commit(moduleSeq)
			set.Assemblies.Commit(assemblySeq)
		}
	}()

	modules, err := dag.Build(ctx, &set.Modules, set.ModuleEdges)
	if err != nil {
		return fmt.Errorf("building module graph: %w", err)
	}
	if err := dag.Sort(ctx, &set.Modules, modules); err != nil {
		return fmt.Errorf("sorting modules: %w", err)
	}
	logger.Debug("Modules sorted", "order", set.Modules.Keys())

	if err := checkLocality(set); err != nil {
		return err
	}
	if err := Regroup(set); err != nil {
		return err
	}

	assemblies, err := dag.Build(ctx, &set.Assemblies, set.AssemblyEdges)
	if err != nil {
		return fmt.Errorf("building assembly graph: %w", err)
	}
	if err := dag.Sort(ctx, &set.Assemblies, assemblies); err != nil {
		return fmt.Errorf("sorting assemblies: %w", err)
	}
	logger.Debug("Assemblies sorted", "order", set.Assemblies.Keys())
	return nil
}

// checkLocality rejects assembly edges that leave the dependent's module.
// Edges to undeclared assemblies are left for the sorter to report.
func checkLocality(set *entity.Set) error {
	for _, e := range set.AssemblyEdges {
		fi, ok := set.Assemblies.Lookup(e.From)
		if !ok {
			continue
		}
		ti, ok := set.Assemblies.Lookup(e.To)
		if !ok {
			continue
		}
		from, to := set.Assemblies.At(fi), set.Assemblies.At(ti)
		if from.Module == entity.None || from.Module == to.Module {
			continue
		}
		err := &CrossModuleDependencyError{
			From:       e.From,
			To:         e.To,
			FromModule: set.Modules.Key(from.Module),
		}
		if to.Module != entity.None {
			err.ToModule = set.Modules.Key(to.Module)
		}
		return err
	}
	return nil
}

// Regroup moves the assemblies of each module into one contiguous block.
// Blocks follow the current module order and keep the relative order of
// their assemblies; assemblies without a module follow the last block.
func Regroup(set *entity.Set) error {
	byModule := make(map[int][]string, set.Modules.Len())
	for _, a := range set.Assemblies.Forward() {
		if a.Module != entity.None {
			byModule[a.Module] = append(byModule[a.Module], a.Key)
		}
	}

	var keys []string
	for mi := range set.Modules.Forward() {
		keys = append(keys, byModule[mi]...)
	}
	return set.Assemblies.Reorder(keys)
}
