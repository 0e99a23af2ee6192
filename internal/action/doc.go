// Package action defines the identity model for units of work in the
// execution graph: the Action record itself, its Kind, and the Ref/Dependency
// types other packages use to address actions without holding pointers to them.
package action
