package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"logicmesh/engine"
	"logicmesh/registry"
)

// Load materializes doc into eng: every block_decl is verified against reg
// before anything is instantiated (so a document naming one unknown block
// type fails without a partial graph), then each block is instantiated with
// its declared id, then every link_decl is connected. Graph mutation here
// calls the engine's exported methods directly rather than through its
// command channel.
func Load(ctx context.Context, eng *engine.Engine, reg *registry.Registry, doc Document) error {
	var unknown *multierror.Error
	for _, b := range doc.Blocks {
		qname := libraryOrDefault(b.Lib) + "::" + b.Name
		if _, err := reg.Descriptor(qname); err != nil {
			unknown = multierror.Append(unknown, fmt.Errorf("block %s (%s): %w", b.ID, qname, err))
		}
	}
	if err := unknown.ErrorOrNil(); err != nil {
		return err
	}

	for _, b := range doc.Blocks {
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return fmt.Errorf("block %s: %w", b.ID, engine.ErrInvalidUUID)
		}
		if _, err := eng.AddBlock(ctx, b.Name, b.Lib, &id); err != nil {
			return fmt.Errorf("block %s: %w", b.ID, err)
		}
	}

	var linkErrs *multierror.Error
	for _, l := range doc.Links {
		decl, err := linkDeclFromData(l)
		if err != nil {
			linkErrs = multierror.Append(linkErrs, err)
			continue
		}
		if _, err := eng.Connect(decl); err != nil {
			linkErrs = multierror.Append(linkErrs, fmt.Errorf("link %s->%s: %w", l.SourceBlockUUID, l.TargetBlockUUID, err))
		}
	}
	return linkErrs.ErrorOrNil()
}

func linkDeclFromData(l LinkData) (engine.LinkDecl, error) {
	src, err := uuid.Parse(l.SourceBlockUUID)
	if err != nil {
		return engine.LinkDecl{}, fmt.Errorf("link source %s: %w", l.SourceBlockUUID, engine.ErrInvalidUUID)
	}
	tgt, err := uuid.Parse(l.TargetBlockUUID)
	if err != nil {
		return engine.LinkDecl{}, fmt.Errorf("link target %s: %w", l.TargetBlockUUID, engine.ErrInvalidUUID)
	}
	decl := engine.LinkDecl{
		SourceBlockID: src,
		TargetBlockID: tgt,
		SourcePinName: l.SourceBlockPinName,
		TargetPinName: l.TargetBlockPinName,
	}
	if l.ID != "" {
		if id, err := uuid.Parse(l.ID); err == nil {
			decl.ID, decl.HasID = id, true
		}
	}
	return decl, nil
}

// Dump reconstructs a Document from eng's live graph (get_current_program),
// carrying meta through unchanged since the engine has no notion of it.
func Dump(eng *engine.Engine, meta ProgramMeta) (Document, error) {
	blockDecls, linkDecls, err := eng.GetProgram()
	if err != nil {
		return Document{}, err
	}

	doc := Document{Meta: meta}
	for _, b := range blockDecls {
		doc.Blocks = append(doc.Blocks, BlockData{
			ID:       b.ID.String(),
			Name:     b.Name,
			Dis:      b.Dis,
			Lib:      b.Library,
			Category: b.Category,
			Ver:      b.Version,
		})
	}
	for _, l := range linkDecls {
		doc.Links = append(doc.Links, LinkData{
			ID:                 l.ID.String(),
			SourceBlockUUID:    l.SourceBlockID.String(),
			TargetBlockUUID:    l.TargetBlockID.String(),
			SourceBlockPinName: l.SourcePinName,
			TargetBlockPinName: l.TargetPinName,
		})
	}
	return doc, nil
}
