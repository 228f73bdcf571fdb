package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// Priority labels accepted by rules. "highest" is kept for converters
// registered from code.
var rulePriorities = map[string]event.Priority{
	"high":   event.PriorityHigh,
	"normal": event.PriorityNormal,
	"low":    event.PriorityLow,
	"lowest": event.PriorityLowest,
}

// Validate reports every invalid setting and rule at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}
	required := func(path, value string) {
		if value == "" {
			add(path, "is required", value, ErrCodeRequiredMissing)
		}
	}
	priority := func(path, value string) {
		if value == "" {
			return
		}
		if _, ok := rulePriorities[strings.ToLower(value)]; !ok {
			add(path, "must be high, normal, low or lowest", value, ErrCodeInvalidEnum)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "must be debug, info, warn or error", c.Log.Level, ErrCodeInvalidEnum)
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		add("log.format", "must be text or json", c.Log.Format, ErrCodeInvalidEnum)
	}
	priority("conversion.default_priority", c.Conversion.DefaultPriority)

	seen := make(map[string]int)
	for i, r := range c.Elements {
		path := fmt.Sprintf("elements[%d]", i)
		required(path+".model", r.Model)
		required(path+".view", r.View)
		if j, dup := seen[r.Model]; dup && r.Model != "" {
			add(path+".model", fmt.Sprintf("already mapped by elements[%d]", j), r.Model, ErrCodeDuplicate)
		}
		seen[r.Model] = i
	}
	for i, r := range c.Attributes {
		path := fmt.Sprintf("attributes[%d]", i)
		required(path+".key", r.Key)
		required(path+".view", r.View)
		priority(path+".priority", r.Priority)
	}
	for i, r := range c.ElementAttributes {
		path := fmt.Sprintf("element_attributes[%d]", i)
		required(path+".key", r.Key)
		required(path+".view_key", r.ViewKey)
		if r.ViewKey == "style" {
			required(path+".style", r.Style)
		}
		priority(path+".priority", r.Priority)
	}
	for i, r := range c.Markers {
		path := fmt.Sprintf("markers[%d]", i)
		required(path+".name", r.Name)
		switch r.Mode {
		case MarkerModeHighlight:
		case MarkerModeElement:
			required(path+".view", r.View)
		default:
			add(path+".mode", "must be highlight or element", r.Mode, ErrCodeInvalidEnum)
		}
		priority(path+".priority", r.Priority)
	}
	return errors.Join(errs...)
}

func (c *Config) priority(label string) event.Priority {
	if p, ok := rulePriorities[strings.ToLower(label)]; ok {
		return p
	}
	if p, ok := rulePriorities[strings.ToLower(c.Conversion.DefaultPriority)]; ok {
		return p
	}
	return event.PriorityNormal
}

// Register adds a converter for every rule. up may be nil when only the
// model-to-view direction is needed.
func (c *Config) Register(down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
	for _, r := range c.Elements {
		if err := c.registerElement(r, down, up); err != nil {
			return fmt.Errorf("element rule %s: %w", r.Model, err)
		}
	}
	for _, r := range c.Attributes {
		if err := c.registerAttribute(r, down, up); err != nil {
			return fmt.Errorf("attribute rule %s: %w", r.Key, err)
		}
	}
	for _, r := range c.ElementAttributes {
		if err := c.registerElementAttribute(r, down, up); err != nil {
			return fmt.Errorf("element attribute rule %s: %w", r.Key, err)
		}
	}
	for _, r := range c.Markers {
		if err := c.registerMarker(r, down); err != nil {
			return fmt.Errorf("marker rule %s: %w", r.Name, err)
		}
	}
	return nil
}

func (c *Config) registerElement(r ElementRule, down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
	prio := c.priority("")
	err := down.ElementToElement(conversion.ElementToElementConfig{
		Model:    r.Model,
		View:     conversion.ElementSpec{Name: r.View, Classes: r.Classes},
		Priority: prio,
	})
	if err != nil || up == nil {
		return err
	}
	return up.ElementToElement(conversion.UpcastElementToElementConfig{
		View:     conversion.ViewPattern{Name: r.View, Classes: r.Classes},
		Model:    r.Model,
		Priority: prio,
	})
}

func (c *Config) registerAttribute(r AttributeRule, down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
	prio := c.priority(r.Priority)
	spec := conversion.ElementSpec{
		Name:       r.View,
		Attributes: r.Attributes,
		Classes:    r.Classes,
		Styles:     r.Styles,
		Priority:   r.ViewPriority,
	}
	modelName := r.Model
	if modelName == "" {
		modelName = model.TextName
	}
	cfg := conversion.AttributeToElementConfig{Key: r.Key, Model: modelName, View: spec, Priority: prio}
	if r.Value != "" {
		cfg.View = conversion.ElementSpec{}
		cfg.Values = map[string]conversion.ElementSpec{r.Value: spec}
	}
	if err := down.AttributeToElement(cfg); err != nil || up == nil {
		return err
	}

	var value any = true
	if r.Value != "" {
		value = r.Value
	}
	return up.ElementToAttribute(conversion.UpcastElementToAttributeConfig{
		View: conversion.ViewPattern{
			Name:       r.View,
			Attributes: r.Attributes,
			Classes:    r.Classes,
			Styles:     r.Styles,
		},
		Key:      r.Key,
		Value:    value,
		Priority: prio,
	})
}

func (c *Config) registerElementAttribute(r ElementAttributeRule, down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
	prio := c.priority(r.Priority)
	err := down.AttributeToAttribute(conversion.AttributeToAttributeConfig{
		Model:    r.Model,
		Key:      r.Key,
		ViewKey:  r.ViewKey,
		Style:    r.Style,
		Priority: prio,
	})
	if err != nil || up == nil || r.View == "" {
		return err
	}

	pattern := conversion.ViewPattern{Name: r.View}
	switch r.ViewKey {
	case "class":
		// Classes cannot be told apart from the ones the element rule adds.
		return nil
	case "style":
		pattern.Styles = map[string]string{r.Style: ""}
	default:
		pattern.Attributes = map[string]string{r.ViewKey: ""}
	}
	return up.AttributeToAttribute(conversion.UpcastAttributeToAttributeConfig{
		View: pattern,
		Key:  r.Key,
	})
}

func (c *Config) registerMarker(r MarkerRule, down *conversion.DowncastHelpers) error {
	prio := c.priority(r.Priority)
	if r.Mode == MarkerModeHighlight {
		return down.MarkerToHighlight(conversion.MarkerToHighlightConfig{
			Marker: r.Name,
			View: conversion.HighlightDescriptor{
				Name:     r.View,
				Classes:  r.Classes,
				Priority: r.ViewPriority,
			},
			Priority: prio,
		})
	}
	return down.MarkerToElement(conversion.MarkerToElementConfig{
		Marker: r.Name,
		Create: func(data *conversion.DowncastData, isStart bool) *view.Element {
			attrs := map[string]string{"data-marker": data.MarkerName}
			if !data.MarkerRange.IsCollapsed() {
				attrs["data-edge"] = "end"
				if isStart {
					attrs["data-edge"] = "start"
				}
			}
			spec := conversion.ElementSpec{Name: r.View, Attributes: attrs, Classes: r.Classes}
			return spec.Build(view.KindUI)
		},
		Priority: prio,
	})
}
