//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Harvest groups the harvest targets.
type Harvest mg.Namespace

// Forum runs a resumable harvest of the Discourse forum.
func (Harvest) Forum() error {
	mg.Deps(Init)
	return sh.RunV(binary(), "harvest", "forum")
}

// Code runs a resumable harvest of GitHub code search.
func (Harvest) Code() error {
	mg.Deps(Init)
	return sh.RunV(binary(), "harvest", "code")
}

// All harvests both sources, forum first.
func (Harvest) All() {
	mg.SerialDeps(Harvest.Forum, Harvest.Code)
}

// Index ingests every record file into the catalog.
func Index() error {
	return sh.RunV(binary(), "catalog", "store")
}
