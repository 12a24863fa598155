// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package plist edits the top-level dictionary of XML property lists.
package plist

import (
	"github.com/beevik/etree"
	"github.com/walteh/projdup/pkg/fsutil"
	"gitlab.com/tozd/go/errors"
)

// 📄 Document is a parsed XML property list
type Document struct {
	doc  *etree.Document
	dict *etree.Element
}

// 📖 Load parses the property list at path
func Load(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Errorf("reading plist %s: %w", path, err)
	}
	return fromDocument(doc)
}

// Parse parses a property list from memory.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Errorf("parsing plist: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *etree.Document) (*Document, error) {
	root := doc.SelectElement("plist")
	if root == nil {
		return nil, errors.Errorf("missing <plist> root element")
	}
	dict := root.SelectElement("dict")
	if dict == nil {
		return nil, errors.Errorf("missing top-level <dict>")
	}
	return &Document{doc: doc, dict: dict}, nil
}

// value returns the element following <key>name</key>
func (d *Document) value(key string) *etree.Element {
	children := d.dict.ChildElements()
	for i, child := range children {
		if child.Tag != "key" || child.Text() != key {
			continue
		}
		if i+1 < len(children) {
			return children[i+1]
		}
		return nil
	}
	return nil
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	var keys []string
	for _, child := range d.dict.ChildElements() {
		if child.Tag == "key" {
			keys = append(keys, child.Text())
		}
	}
	return keys
}

// String returns the text of a <string> value.
func (d *Document) String(key string) (string, bool) {
	v := d.value(key)
	if v == nil || v.Tag != "string" {
		return "", false
	}
	return v.Text(), true
}

// ✏️ SetString sets key to a <string> value, replacing whatever value type
// was there and appending the pair when the key is missing.
func (d *Document) SetString(key, value string) {
	v := d.value(key)
	if v == nil {
		d.dict.CreateElement("key").SetText(key)
		d.dict.CreateElement("string").SetText(value)
		return
	}

	for _, child := range v.ChildElements() {
		v.RemoveChild(child)
	}
	v.Tag = "string"
	v.SetText(value)
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	b, err := d.doc.WriteToBytes()
	if err != nil {
		return nil, errors.Errorf("serializing plist: %w", err)
	}
	return b, nil
}

// 💾 Save writes the document to path atomically
func (d *Document) Save(path string) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, b, 0o644); err != nil {
		return errors.Errorf("writing plist %s: %w", path, err)
	}
	return nil
}
