/*
Package dom is a small headless DOM over golang.org/x/net/html.

It provides just enough browser behaviour for the edit-in-place widget: element
attributes and data attributes, inner HTML and text, form control values, focus,
and bubbling events with default actions (a click on a submit button submits its
form, Enter in a text input submits its form).

Selectors are a CSS subset (tag, #id, .class, [attr], [attr=value] and the descendant
combinator) translated to XPath and evaluated with github.com/antchfx/htmlquery.
Strings starting with "/" or "./" are passed through as XPath.

A Document is not safe for concurrent use. All access happens on the widget loop,
see package loop.
*/
package dom
