package editing

import (
	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// DataPipeline converts whole roots in one go, for loading and saving data.
// It owns its own mapper and dispatchers so data conversion never touches
// the editing view.
type DataPipeline struct {
	mapper   *conversion.Mapper
	downcast *conversion.DowncastDispatcher
	upcast   *conversion.UpcastDispatcher
	log      *logging.Logger
}

// NewDataPipeline creates a pipeline with the default converters registered
// in both directions.
func NewDataPipeline(opts conversion.Options) (*DataPipeline, error) {
	mapper := conversion.NewMapper()
	p := &DataPipeline{
		mapper:   mapper,
		downcast: conversion.NewDowncastDispatcher(mapper, view.NewWriter(nil), opts),
		upcast:   conversion.NewUpcastDispatcher(opts),
		log:      componentLogger(opts, "data"),
	}
	if err := conversion.RegisterDefaultDowncast(p.downcast); err != nil {
		return nil, err
	}
	if err := conversion.RegisterDefaultUpcast(p.upcast); err != nil {
		return nil, err
	}
	return p, nil
}

// Downcast returns the data dispatcher for the model-to-view direction.
func (p *DataPipeline) Downcast() *conversion.DowncastDispatcher { return p.downcast }

// Upcast returns the data dispatcher for the view-to-model direction.
func (p *DataPipeline) Upcast() *conversion.UpcastDispatcher { return p.upcast }

// ToView converts the content of root into a detached view fragment.
// Markers from markers that live in root are converted as well; markers may
// be nil. Bindings from previous calls are discarded first.
func (p *DataPipeline) ToView(root *model.Element, markers *model.MarkerCollection) (*view.Element, error) {
	p.mapper.ClearBindings()
	frag := view.NewFragment()
	p.mapper.BindElements(root, frag)
	if root.ChildCount() == 0 {
		return frag, nil
	}
	if err := p.downcast.ConvertInsert(model.RangeIn(root)); err != nil {
		return frag, err
	}
	if markers == nil {
		return frag, nil
	}
	return frag, convertMarkers(p.downcast, root, markers)
}

// ToModel converts a view node and its descendants into a model fragment.
func (p *DataPipeline) ToModel(n view.Node) (*model.Element, error) {
	return p.upcast.Convert(n)
}

// Stringify renders the content of root as markup.
func (p *DataPipeline) Stringify(root *model.Element, markers *model.MarkerCollection) (string, error) {
	frag, err := p.ToView(root, markers)
	if err != nil {
		return "", err
	}
	return markup.String(frag), nil
}

// Parse reads markup and converts it into a model fragment. Selection
// markers in data are ignored.
func (p *DataPipeline) Parse(data string) (*model.Element, error) {
	res, err := markup.Parse(data)
	if err != nil {
		return nil, err
	}
	p.log.Debug("parsed %d top-level nodes", res.Fragment.ChildCount())
	return p.ToModel(res.Fragment)
}
