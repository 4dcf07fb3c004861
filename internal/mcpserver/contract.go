package mcpserver

// DocumentFormatContract describes the structured-document format that LLM
// consumers must follow when placing or saving canvas documents.
const DocumentFormatContract = `# Skein Canvas Document Contract

Every document exchanged with Skein is a JSON object with this shape.

## Structure

` + "```" + `json
{
  "components": [
    {
      "id": "a1b2c3",                       // REQUIRED - unique within the document
      "name": "Addition",                   // REQUIRED
      "kind": "component",                  // REQUIRED - parameter | component | script
      "category": "Maths",
      "subcategory": "Operators",
      "enabled": true,
      "position": {"x": 120, "y": 80},
      "inputSettings": [
        {
          "name": "A",
          "typeHint": "number",
          "access": "item",
          "dataMapping": "none"
        }
      ],
      "outputSettings": [{"name": "Result", "typeHint": "number"}]
    }
  ],
  "connections": [
    {"sourceId": "a1b2c3", "sourceSlot": 0, "targetId": "d4e5f6", "targetSlot": 0}
  ],
  "groups": [
    {"name": "Inputs", "color": "#cce5ff", "members": ["a1b2c3"]}
  ],
  "metadata": {}
}
` + "```" + `

## Script nodes

A node with kind "script" MUST carry exactly one language block under
componentState.extensions, keyed by language. Supported languages: python,
csharp, vb. Each language has its own block shape; the only common field is
"source".

` + "```" + `json
{
  "id": "s1",
  "name": "Custom Step",
  "kind": "script",
  "componentState": {
    "extensions": {
      "python": {"source": "a = x + y"}
    }
  }
}
` + "```" + `

## Rules

1. Node ids must be unique within the document. A declared id that already
   exists on the live canvas means "update that node in place"; unknown ids
   become new nodes with fresh ids. place_document returns the full id
   mapping; always chain follow-up calls on the returned live ids.
2. Connection endpoints and group members must reference declared node ids.
3. Access modes are item, list, or tree; data mappings are none, flatten, or
   graft.
4. Never downgrade a known typeHint to "generic".
5. Slot order is significant: inputSettings and outputSettings arrays are
   positional and stable.
6. Only the sections a serialization included are present; omitted sections
   are not applied on placement.
`
