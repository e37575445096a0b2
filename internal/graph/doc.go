// Package graph orders the module and assembly lists of an entity set.
//
// Modules are sorted by their own dependencies first. Assemblies are then
// regrouped so that each module's assemblies form one contiguous block, with
// blocks in module order and assemblies without a module last, and finally
// sorted within those blocks. Because an assembly inside a module may only
// depend on assemblies of the same module, the final sort never breaks a
// block apart.
package graph
