package render

// Stylesheet styles the replica and the explanation panel. The web UI links
// it and Document embeds it.
const Stylesheet = `
.fl-replica { font-family: Georgia, "Noto Serif", serif; background: #fff; color: #111; padding: 1.5rem; border-radius: .75rem; box-shadow: 0 1px 3px rgba(0,0,0,.15); }
.fl-replica-header { border-bottom: 1px solid #cbd5e1; margin-bottom: 1rem; padding-bottom: 1rem; }
.fl-title { font-size: 1.25rem; font-weight: 700; margin: 0; }
.fl-section { margin-bottom: 2rem; }
.fl-section-title { font-size: 1.1rem; font-weight: 700; border-bottom: 2px solid #000; padding-bottom: .25rem; margin: 0 0 1rem; }
.fl-description { font-size: .875rem; font-style: italic; color: #475569; margin: 0 0 1rem; }
.fl-rows { display: flex; flex-direction: column; gap: 1rem; }
.fl-row { display: flex; flex-wrap: wrap; align-items: flex-end; gap: 1rem; }
.fl-number { margin-right: .5rem; }
.fl-field--label { display: flex; align-items: flex-end; min-height: 2rem; font-weight: 600; }
.fl-field--checkbox { display: flex; align-items: center; min-height: 2rem; }
.fl-box { display: inline-block; width: 1rem; height: 1rem; margin-right: .5rem; border: 1px solid #000; }
.fl-field--photo { width: 8rem; height: 10rem; border: 2px dashed #475569; display: flex; align-items: center; justify-content: center; text-align: center; padding: .5rem; font-size: .875rem; color: #334155; }
.fl-field--side { display: flex; align-items: center; flex: 999 1 0; width: 100%; }
.fl-side-label { margin-right: .5rem; white-space: nowrap; }
.fl-underline { display: block; flex: 1; height: 1.75rem; border-bottom: 2px dotted #000; }
.fl-field--stacked { display: flex; flex-direction: column; flex: 1; min-width: 150px; margin-bottom: .5rem; }
.fl-caption { font-size: .75rem; font-weight: 600; color: #475569; margin-bottom: .25rem; }
.fl-input { display: block; height: 2rem; border: 1px solid #000; border-radius: 2px; }
.fl-table-wrap { overflow-x: auto; border: 1px solid #000; }
.fl-table { width: 100%; border-collapse: collapse; font-size: .875rem; text-align: left; }
.fl-table-head { background: #f1f5f9; border-bottom: 2px solid #000; }
.fl-cell { padding: .25rem .5rem; height: 2.25rem; }
.fl-cell--header { font-weight: 700; padding: .5rem; }
.fl-cell--sep { border-right: 1px solid #cbd5e1; }
.fl-cell--header.fl-cell--sep { border-right: 1px solid #000; }
.fl-table-row + .fl-table-row { border-top: 1px solid #cbd5e1; }
.fl-explanation { background: #fff; padding: 1.5rem; border-radius: .75rem; box-shadow: 0 1px 3px rgba(0,0,0,.15); }
.fl-explanation-header { display: flex; justify-content: space-between; align-items: center; }
.fl-paragraphs p { margin: 0 0 .75rem; line-height: 1.6; }
.fl-copy[data-copied="true"] { color: #2563eb; font-weight: 600; }
[dir="rtl"] .fl-side-label { margin-right: 0; margin-left: .5rem; }
[dir="rtl"] .fl-number { margin-right: 0; margin-left: .5rem; }
`
