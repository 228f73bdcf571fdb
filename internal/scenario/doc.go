// Package scenario replays JSON-described model edits through an editing
// controller and records the view after each one.
//
// A scenario looks like:
//
//	{
//	    "root": "main",
//	    "element": "div",
//	    "content": "<p>foo</p>",
//	    "steps": [
//	        {"op": "insertText", "at": [0, 3], "text": "bar", "attributes": {"bold": true}},
//	        {"op": "select", "from": [0, 1], "to": [0, 2]},
//	        {"op": "addMarker", "name": "comment:1", "from": [0, 0], "to": [0, 3]}
//	    ]
//	}
//
// Positions are model paths relative to the root. Each step runs in its own
// change block, so the selection is converted after every step.
package scenario
